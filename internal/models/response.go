package models

import "fmt"

// Article is a source document the backend used to ground an answer
type Article struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"`
}

// String formats the article as a single line reference
func (a Article) String() string {
	if a.Title == "" {
		return a.URL
	}
	if a.URL == "" {
		return a.Title
	}
	return fmt.Sprintf("%s (%s)", a.Title, a.URL)
}

// ChatResponse is the decoded body of a successful chat request
type ChatResponse struct {
	Answer   string
	Articles []Article
}

// HasSources reports whether the backend returned any articles
func (r *ChatResponse) HasSources() bool {
	return r != nil && len(r.Articles) > 0
}
