package service

import (
	"math"
	"regexp"
	"strings"

	"github.com/anothercodingguy/vidhived/model"
)

// PhraseScorer calculates an importance score for a legal phrase based on
// predefined patterns.
type PhraseScorer struct {
	obligationPatterns  []weightedPattern
	paymentPatterns     []weightedPattern
	consequencePatterns []weightedPattern
	timePatterns        []weightedPattern
	formalityPatterns   []weightedPattern
	negationPattern     *regexp.Regexp
	emphasisPattern     *regexp.Regexp
}

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

func NewPhraseScorer() *PhraseScorer {
	return &PhraseScorer{
		obligationPatterns: []weightedPattern{
			{regexp.MustCompile(`(?i)\b(shall|must|required to|obligated to|bound to)\b`), 0.65},
			{regexp.MustCompile(`(?i)\b(has the right to|entitled to|may demand|can require)\b`), 0.60},
			{regexp.MustCompile(`(?i)\b(responsible for|liable for|accountable for)\b`), 0.66},
		},
		paymentPatterns: []weightedPattern{
			{regexp.MustCompile(`(?i)\b(payment shall be made|pay|due on|due within)\b`), 0.78},
			{regexp.MustCompile(`(?i)\b(interest|late payment penalty|overdue)\b`), 0.75},
			{regexp.MustCompile(`(?i)\b(advance payment|security deposit|earnest money)\b`), 0.72},
		},
		consequencePatterns: []weightedPattern{
			{regexp.MustCompile(`(?i)\b(in case of default|breach of contract|violation of)\b`), 0.80},
			{regexp.MustCompile(`(?i)\b(liable to pay damages|legal action|court proceedings)\b`), 0.78},
			{regexp.MustCompile(`(?i)\b(contract may be terminated|agreement is cancelled)\b`), 0.76},
			{regexp.MustCompile(`(?i)\b(forfeiture of|penalty of|fine of)\b`), 0.74},
		},
		timePatterns: []weightedPattern{
			{regexp.MustCompile(`(?i)\b(within \d+\s+days?|not later than|before the expiry)\b`), 0.58},
			{regexp.MustCompile(`(?i)\b(notice period of|during the term of|upon expiry of)\b`), 0.55},
			{regexp.MustCompile(`(?i)\b(immediate(?:ly)?|forthwith|without delay)\b`), 0.60},
		},
		formalityPatterns: []weightedPattern{
			{regexp.MustCompile(`(?i)\b(this agreement is made|whereas the parties|in witness whereof)\b`), 0.15},
			{regexp.MustCompile(`(?i)\b(governed by|jurisdiction|arbitration)\b`), 0.18},
		},
		negationPattern: regexp.MustCompile(`(?i)\b(not|never|without|except|unless|no)\s+`),
		emphasisPattern: regexp.MustCompile(`\b[A-Z]{2,}\b|"[^"]*"`),
	}
}

// Score returns the importance score for a phrase, in [0, 1]
func (s *PhraseScorer) Score(phrase string) float64 {
	if strings.TrimSpace(phrase) == "" {
		return 0.0
	}

	type match struct {
		score    float64
		category string
	}
	var matched []match

	groups := []struct {
		patterns []weightedPattern
		category string
	}{
		{s.obligationPatterns, "obligation"},
		{s.paymentPatterns, "payment"},
		{s.consequencePatterns, "consequence"},
		{s.timePatterns, "time"},
	}

	// Check high-importance patterns first
	for _, g := range groups {
		for _, p := range g.patterns {
			if p.re.MatchString(phrase) {
				matched = append(matched, match{p.weight, g.category})
			}
		}
	}

	// Check low-importance formality patterns
	isFormality := false
	for _, p := range s.formalityPatterns {
		if p.re.MatchString(phrase) {
			matched = append(matched, match{p.weight, "formality"})
			isFormality = true
		}
	}

	if len(matched) == 0 {
		return 0.0
	}

	// Use formality score if present, otherwise use the max score
	baseScore := 0.0
	for _, m := range matched {
		if isFormality {
			if m.category == "formality" && m.score > baseScore {
				baseScore = m.score
			}
		} else if m.score > baseScore {
			baseScore = m.score
		}
	}

	// Apply context modifiers
	contextBonus := 0.0
	if s.negationPattern.MatchString(phrase) {
		contextBonus -= 0.15
	}
	if s.emphasisPattern.MatchString(phrase) {
		contextBonus += 0.08
	}

	categories := make(map[string]bool)
	for _, m := range matched {
		if m.category != "formality" {
			categories[m.category] = true
		}
	}
	if len(categories) > 1 {
		contextBonus += 0.1 * float64(len(categories)-1)
	}
	if categories["consequence"] && categories["payment"] {
		contextBonus += 0.05
	}
	if categories["obligation"] && categories["time"] {
		contextBonus += 0.03
	}

	final := math.Min(1.0, math.Max(0.0, baseScore+contextBonus))
	return math.Round(final*1000) / 1000
}

// RiskCategory maps a score to a risk tier
func RiskCategory(score float64) string {
	switch {
	case score >= 0.70:
		return model.CategoryHigh
	case score >= 0.40:
		return model.CategoryMedium
	default:
		return model.CategoryLow
	}
}
