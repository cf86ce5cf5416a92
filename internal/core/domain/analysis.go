package domain

import (
	"math"
	"sort"
)

// AnalysisRequest is the body of POST /api/analyze and POST /api/predict.
type AnalysisRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AnalysisResult is the classifier output for a ticket draft.
// TicketID is only set when the backend persisted the ticket.
type AnalysisResult struct {
	Subject            string              `json:"subject"`
	Category           string              `json:"category"`
	Priority           TicketPriority      `json:"priority"`
	Queue              string              `json:"queue"`
	ConfidenceCategory float64             `json:"confidence_category"`
	ConfidencePriority float64             `json:"confidence_priority"`
	RuleOverride       bool                `json:"rule_override"`
	OverrideKeyword    string              `json:"override_keyword,omitempty"`
	Entities           map[string][]string `json:"entities,omitempty"`
	TicketID           *int64              `json:"ticket_id,omitempty"`
}

// Persisted reports whether the analysis created a ticket.
func (a *AnalysisResult) Persisted() bool {
	return a != nil && a.TicketID != nil
}

// CategoryConfidencePct returns the category confidence as a rounded percentage.
func (a *AnalysisResult) CategoryConfidencePct() int {
	return toPercent(a.ConfidenceCategory)
}

// PriorityConfidencePct returns the priority confidence as a rounded percentage.
func (a *AnalysisResult) PriorityConfidencePct() int {
	return toPercent(a.ConfidencePriority)
}

// EntityTag is one extracted span labelled with its entity type.
type EntityTag struct {
	Label string
	Value string
}

// EntityTags flattens the entity map into tags, ordered by label.
// Labels with no spans are skipped.
func (a *AnalysisResult) EntityTags() []EntityTag {
	if a == nil || len(a.Entities) == 0 {
		return nil
	}
	labels := make([]string, 0, len(a.Entities))
	for label := range a.Entities {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var tags []EntityTag
	for _, label := range labels {
		for _, v := range a.Entities[label] {
			tags = append(tags, EntityTag{Label: label, Value: v})
		}
	}
	return tags
}

func toPercent(f float64) int {
	return int(math.Round(f * 100))
}
