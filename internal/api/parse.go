package api

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apierrors "github.com/diogo/chatotp/internal/errors"
	"github.com/diogo/chatotp/internal/models"
)

// buildPayload encodes {"question": ..., "top_k": ...}
func buildPayload(question string, topK int) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "question", question)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(payload, "top_k", topK)
}

// parseChatResponse extracts the answer and any relevant articles.
// Only a string "answer" is required.
func parseChatResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response body is not valid JSON", "")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, apierrors.NewParseError("response body is not a JSON object", "")
	}

	answer := root.Get("answer")
	if !answer.Exists() {
		return nil, apierrors.NewParseError("missing field", "answer")
	}
	if answer.Type != gjson.String {
		return nil, apierrors.NewParseError(fmt.Sprintf("expected string, got %s", answer.Type), "answer")
	}

	return &models.ChatResponse{
		Answer:   answer.String(),
		Articles: parseArticles(root.Get("relevant_articles")),
	}, nil
}

// parseArticles is best effort: malformed entries are skipped
func parseArticles(result gjson.Result) []models.Article {
	if !result.IsArray() {
		return nil
	}

	var articles []models.Article
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		article := models.Article{
			Title:     item.Get("title").String(),
			URL:       item.Get("url").String(),
			Content:   item.Get("content").String(),
			Relevance: item.Get("relevance").Float(),
		}
		if article.Title == "" && article.URL == "" {
			return true
		}
		articles = append(articles, article)
		return true
	})
	return articles
}

// parseHealth expects {"status":"healthy"}
func parseHealth(body []byte) error {
	if !gjson.ValidBytes(body) {
		return apierrors.NewParseError("health body is not valid JSON", "")
	}
	status := gjson.GetBytes(body, "status")
	if !status.Exists() {
		return apierrors.NewParseError("missing field", "status")
	}
	if status.String() != "healthy" {
		return fmt.Errorf("%w: %q", apierrors.ErrUnhealthy, status.String())
	}
	return nil
}
