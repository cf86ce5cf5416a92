package smartdesk

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

// parseStats reads /api/stats leniently: missing or mistyped fields become
// zero values and malformed series become empty, so one bad field never
// blanks the whole dashboard.
func parseStats(body []byte) (*domain.Stats, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: /api/stats: malformed JSON", apperrors.ErrInvalidResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: /api/stats: expected an object", apperrors.ErrInvalidResponse)
	}

	return &domain.Stats{
		Total:      root.Get("total").Int(),
		Today:      root.Get("today").Int(),
		Pending:    root.Get("pending").Int(),
		Resolved:   root.Get("resolved").Int(),
		Attended:   root.Get("attended").Int(),
		ByCategory: buckets(root.Get("by_category"), "category"),
		ByPriority: buckets(root.Get("by_priority"), "priority"),
		ByStatus:   buckets(root.Get("by_status"), "status"),
		Daily:      daily(root.Get("daily")),
		ModelStats: domain.ModelStats{
			CategoryAccuracy: root.Get("model_stats.category_accuracy").Float(),
			PriorityAccuracy: root.Get("model_stats.priority_accuracy").Float(),
			QueueAccuracy:    root.Get("model_stats.queue_accuracy").Float(),
		},
		IsAdmin: root.Get("is_admin").Bool(),
	}, nil
}

func buckets(series gjson.Result, key string) []domain.CountByKey {
	if !series.IsArray() {
		return nil
	}
	var out []domain.CountByKey
	series.ForEach(func(_, row gjson.Result) bool {
		if row.IsObject() {
			out = append(out, domain.CountByKey{Key: row.Get(key).String(), Count: row.Get("cnt").Int()})
		}
		return true
	})
	return out
}

func daily(series gjson.Result) []domain.DailyCount {
	if !series.IsArray() {
		return nil
	}
	var out []domain.DailyCount
	series.ForEach(func(_, row gjson.Result) bool {
		if day := row.Get("day").String(); day != "" {
			out = append(out, domain.DailyCount{Day: day, Count: row.Get("cnt").Int()})
		}
		return true
	})
	return out
}
