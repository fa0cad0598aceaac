// Package models contains data types and constants for the ChatOTP client.
package models

// Endpoints for the chat backend
const (
	DefaultEndpoint = "http://localhost:8000/api/chat"
	HealthPath      = "/api/health"
)

// DefaultTopK is the number of articles the backend retrieves per question.
const DefaultTopK = 3

// User-facing strings shared by the presentation layers
const (
	// FailureMessage replaces the assistant answer whenever an exchange fails.
	FailureMessage = "⚠️ Sorry, something went wrong. Please try again."

	// BusyWarning is shown when the user tries to send while a request is in flight.
	BusyWarning = "Please wait for the model to finish its response!"

	AppName         = "ChatOTP"
	DefaultModelTag = "GPT-4o mini"
	KnowledgeSource = "COTO Resources"
	KnowledgeURL    = "https://www.coto.org/resource/practice-guidance/"
)

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "chatotp-cli",
	}
}
