package smartdesk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

func TestParseStats(t *testing.T) {
	body := []byte(`{
		"total": 12, "today": 2, "pending": 5, "resolved": 4, "attended": 7,
		"by_category": [{"category": "Incident", "cnt": 8}, {"category": null, "cnt": 4}],
		"by_priority": [{"priority": "high", "cnt": 3}],
		"by_status": [{"status": "In Progress", "cnt": 3}],
		"daily": [{"day": "2026-10-15", "cnt": 2}, {"cnt": 9}],
		"model_stats": {"category_accuracy": 94.2, "priority_accuracy": 88, "queue_accuracy": null},
		"is_admin": true
	}`)

	stats, err := parseStats(body)
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(7), stats.Attended)
	assert.Equal(t, []domain.CountByKey{{Key: "Incident", Count: 8}, {Key: "", Count: 4}}, stats.ByCategory)
	assert.Equal(t, int64(3), stats.StatusCount(domain.StatusInProgress))
	assert.Equal(t, []domain.DailyCount{{Day: "2026-10-15", Count: 2}}, stats.Daily)
	assert.Equal(t, 94.2, stats.ModelStats.CategoryAccuracy)
	assert.Equal(t, 0.0, stats.ModelStats.QueueAccuracy)
	assert.True(t, stats.IsAdmin)
}

func TestParseStats_Lenient(t *testing.T) {
	stats, err := parseStats([]byte(`{"total": "n/a", "by_category": "oops", "daily": [1, 2]}`))
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Total)
	assert.Nil(t, stats.ByCategory)
	assert.Nil(t, stats.Daily)
	assert.False(t, stats.IsAdmin)
}

func TestParseStats_Invalid(t *testing.T) {
	_, err := parseStats([]byte(`{"total": `))
	assert.ErrorIs(t, err, apperrors.ErrInvalidResponse)

	_, err = parseStats([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidResponse)
}
