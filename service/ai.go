package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/anothercodingguy/vidhived/config"
	openai "github.com/sashabaranov/go-openai"
)

const maxCompletionTokens = 1024

// AIService generates plain-language clause explanations and answers
// document-scoped questions. Without an API key it falls back to canned
// responses so the rest of the pipeline stays usable in development.
type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(cfg *config.AIConfig) *AIService {
	svc := &AIService{model: cfg.Model}
	if cfg.APIKey != "" {
		svc.client = openai.NewClient(cfg.APIKey)
	}
	return svc
}

// ExplainClause returns a clause type label and a simplified explanation for
// a risky clause.
func (s *AIService) ExplainClause(ctx context.Context, clauseText string) (clauseType, explanation string) {
	if s.client != nil {
		prompt := fmt.Sprintf(
			"You are a legal assistant. Classify the following contract clause with a short type label "+
				"(e.g. Termination Clause, Payment Terms, General Obligation) on the first line, then explain "+
				"it in plain language for a non-lawyer on the following lines.\n\nClause:\n%s", clauseText)
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     s.model,
			MaxTokens: maxCompletionTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err == nil && len(resp.Choices) > 0 {
			lines := strings.SplitN(strings.TrimSpace(resp.Choices[0].Message.Content), "\n", 2)
			clauseType = strings.TrimSpace(lines[0])
			if len(lines) > 1 {
				explanation = strings.TrimSpace(lines[1])
			}
			if clauseType != "" && explanation != "" {
				return clauseType, explanation
			}
		}
		// Model failure falls through to the canned explanation
	}

	return cannedExplanation(clauseText)
}

// Answer answers a free-form question about the document, using the extracted
// full text as context.
func (s *AIService) Answer(ctx context.Context, fullText, query string) (string, error) {
	if s.client == nil {
		return fmt.Sprintf(
			"In the context of the document, the phrase '%s' relates to an obligation or condition stated "+
				"in the contract. Pay attention to any associated deadlines or conditions mentioned nearby.",
			query), nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxCompletionTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a legal assistant. Answer the user's question using only the contract " +
					"text provided. Be concise and avoid legal jargon.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Contract text:\n%s\n\nQuestion: %s", fullText, query),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func cannedExplanation(clauseText string) (clauseType, explanation string) {
	lower := strings.ToLower(clauseText)
	switch {
	case strings.Contains(lower, "terminate"):
		return "Termination Clause",
			"This section explains how and when the agreement can be ended by either party. " +
				"Pay close attention to the reasons and notice periods required."
	case strings.Contains(lower, "pay") || strings.Contains(lower, "payment"):
		return "Payment Terms",
			"This describes when and how much money needs to be paid. " +
				"Check for deadlines and any penalties for late payments."
	default:
		return "General Obligation",
			"This clause outlines a specific duty or responsibility that one of the parties must follow."
	}
}
