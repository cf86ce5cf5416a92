package domain

// CountByKey is one bucket of a grouped breakdown, e.g. {category: "Incident", cnt: 4}.
type CountByKey struct {
	Key   string
	Count int64
}

// DailyCount is the number of tickets created on one calendar day.
type DailyCount struct {
	Day   string // YYYY-MM-DD
	Count int64
}

// ModelStats holds the classifier accuracy figures, in percent. Zero means absent.
type ModelStats struct {
	CategoryAccuracy float64
	PriorityAccuracy float64
	QueueAccuracy    float64
}

// Stats is the aggregate returned by GET /api/stats. It is recomputed server-side on every fetch.
type Stats struct {
	Total      int64
	Today      int64
	Pending    int64
	Resolved   int64
	Attended   int64
	ByCategory []CountByKey
	ByPriority []CountByKey
	ByStatus   []CountByKey
	Daily      []DailyCount
	ModelStats ModelStats
	IsAdmin    bool
}

// StatusCount returns the count for a status bucket, or zero when the bucket is missing.
func (s *Stats) StatusCount(status TicketStatus) int64 {
	if s == nil {
		return 0
	}
	for _, c := range s.ByStatus {
		if c.Key == string(status) {
			return c.Count
		}
	}
	return 0
}
