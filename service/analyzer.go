package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/anothercodingguy/vidhived/model"
)

// Analyzer turns an OCR layout result into an ordered list of scored,
// risk-tagged clauses.
type Analyzer struct {
	scorer *PhraseScorer
	ai     *AIService
}

func NewAnalyzer(ai *AIService) *Analyzer {
	return &Analyzer{
		scorer: NewPhraseScorer(),
		ai:     ai,
	}
}

// BuildClauses scores every text block, assigns risk categories and
// generates explanations for risky clauses. Blocks under five words carry no
// meaningful legal content and are skipped. Clause locations keep the block's
// bounding box in the page's native coordinate space.
func (a *Analyzer) BuildClauses(ctx context.Context, layout *LayoutResult) (string, []model.Clause) {
	var fullText strings.Builder
	var clauses []model.Clause

	for _, page := range layout.Pages {
		for _, block := range page.Blocks {
			text := strings.TrimSpace(block.Text)
			if text == "" {
				continue
			}
			fullText.WriteString(text)
			fullText.WriteString("\n\n")

			if len(strings.Fields(text)) < 5 {
				continue
			}

			score := a.scorer.Score(text)
			category := RiskCategory(score)

			clauseType := "General"
			explanation := ""
			if category == model.CategoryHigh || category == model.CategoryMedium {
				clauseType, explanation = a.ai.ExplainClause(ctx, text)
			}

			clauses = append(clauses, model.Clause{
				ID:          fmt.Sprintf("clause-%d", len(clauses)+1),
				Type:        clauseType,
				Category:    category,
				Score:       score,
				Text:        text,
				Explanation: explanation,
				Location: model.Location{
					Page:   page.Page,
					X:      block.X,
					Y:      block.Y,
					Width:  block.Width,
					Height: block.Height,
				},
			})
		}
	}

	return strings.TrimSpace(fullText.String()), clauses
}
