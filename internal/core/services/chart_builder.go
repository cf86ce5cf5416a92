package services

import (
	"strconv"
	"time"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
)

// Chart palette.
const (
	ColorBlue   = "#2979FF"
	ColorCyan   = "#00D4FF"
	ColorViolet = "#7B5CF0"
	ColorTeal   = "#00C9A7"
	ColorOrange = "#F59E0B"
	ColorRed    = "#FF4444"
	ColorGreen  = "#22C55E"
	ColorPink   = "#EC4899"
	ColorSlate  = "#94A3C0"

	pieBorderColor = "#0B1121"
	dailyDays      = 7
)

var categoryColors = []string{ColorBlue, ColorCyan, ColorViolet, ColorTeal, ColorOrange}

var priorityColors = map[string]string{
	string(domain.PriorityHigh):   ColorRed,
	string(domain.PriorityMedium): ColorOrange,
	string(domain.PriorityLow):    ColorGreen,
}

var statusColors = map[string]string{
	string(domain.StatusPending):    ColorOrange,
	string(domain.StatusInProgress): ColorBlue,
	string(domain.StatusResolved):   ColorGreen,
	string(domain.StatusClosed):     ColorSlate,
}

// Chart is a Chart.js descriptor. The browser script passes Type, Data and
// Options to Chart.js and turns Gradient and Tooltip hints into callbacks.
type Chart struct {
	ID      string         `json:"id"`
	Title   string         `json:"title,omitempty"`
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options"`
	// Tooltip is a label template with {label}, {value} and {dataset} placeholders.
	Tooltip string `json:"tooltip,omitempty"`
	// TickSuffix is appended to y axis tick labels.
	TickSuffix string `json:"tickSuffix,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset mirrors a Chart.js dataset. Colours are a single string or one per point.
type Dataset struct {
	Label                string    `json:"label,omitempty"`
	Data                 []float64 `json:"data"`
	BackgroundColor      any       `json:"backgroundColor,omitempty"`
	BorderColor          any       `json:"borderColor,omitempty"`
	BorderWidth          int       `json:"borderWidth,omitempty"`
	BorderRadius         int       `json:"borderRadius,omitempty"`
	HoverOffset          int       `json:"hoverOffset,omitempty"`
	HoverBackgroundColor string    `json:"hoverBackgroundColor,omitempty"`
	Fill                 bool      `json:"fill,omitempty"`
	Tension              float64   `json:"tension,omitempty"`
	Gradient             *Gradient `json:"gradient,omitempty"`
}

// Gradient asks the browser for a vertical fill from From to To.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AccuracyBar is one classifier accuracy row on the analytics page.
type AccuracyBar struct {
	Key     string
	Label   string
	Value   float64
	Display string // e.g. "94.2%"
	Width   string // CSS width, clamped to 0-100%
}

// AnalyticsView is everything the analytics page draws.
type AnalyticsView struct {
	Total    int64         `json:"total"`
	Charts   []Chart       `json:"charts"`
	Accuracy []AccuracyBar `json:"-"`
}

// ChartBuilder maps stats onto chart descriptors. It has no error states.
type ChartBuilder struct {
	now func() time.Time
}

// NewChartBuilder uses now to anchor the daily series; nil means time.Now.
func NewChartBuilder(now func() time.Time) *ChartBuilder {
	if now == nil {
		now = time.Now
	}
	return &ChartBuilder{now: now}
}

// Analytics builds the four analytics charts and the accuracy rows.
func (b *ChartBuilder) Analytics(stats *domain.Stats) AnalyticsView {
	if stats == nil {
		stats = &domain.Stats{}
	}
	return AnalyticsView{
		Total: stats.Total,
		Charts: []Chart{
			b.Daily(stats),
			b.Category(stats),
			b.Priority(stats),
			b.Status(stats),
		},
		Accuracy: b.ModelAccuracy(stats),
	}
}

// Daily is a bar chart of the trailing seven days, oldest first.
func (b *ChartBuilder) Daily(stats *domain.Stats) Chart {
	labels, counts := DailySeries(stats.Daily, b.now())
	return Chart{
		ID:    "dailyChart",
		Title: "Tickets per day",
		Type:  "bar",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:                "Tickets",
				Data:                 counts,
				BackgroundColor:      ColorCyan + "CC",
				BorderColor:          ColorCyan,
				BorderWidth:          2,
				BorderRadius:         6,
				HoverBackgroundColor: ColorCyan,
				Gradient:             &Gradient{From: ColorCyan + "CC", To: ColorCyan + "22"},
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins":    map[string]any{"legend": map[string]any{"display": false}},
			"scales": map[string]any{
				"y": map[string]any{
					"beginAtZero": true,
					"ticks":       map[string]any{"stepSize": 1},
					"grid":        map[string]any{"color": "rgba(255,255,255,0.04)"},
				},
				"x": map[string]any{"grid": map[string]any{"display": false}},
			},
		},
	}
}

// DailySeries fills the seven days ending on today with counts from daily.
// Days are matched on their "Jan 2" label; missing days count zero.
func DailySeries(daily []domain.DailyCount, today time.Time) ([]string, []float64) {
	byLabel := make(map[string]float64, len(daily))
	for _, d := range daily {
		day, ok := domain.ParseTimestamp(d.Day)
		if !ok {
			continue
		}
		label := day.Format(domain.LayoutShortDate)
		if _, seen := byLabel[label]; !seen {
			byLabel[label] = float64(d.Count)
		}
	}

	labels := make([]string, 0, dailyDays)
	counts := make([]float64, 0, dailyDays)
	for i := dailyDays - 1; i >= 0; i-- {
		label := today.AddDate(0, 0, -i).Format(domain.LayoutShortDate)
		labels = append(labels, label)
		counts = append(counts, byLabel[label])
	}
	return labels, counts
}

// Category is a doughnut coloured from the fixed category palette.
func (b *ChartBuilder) Category(stats *domain.Stats) Chart {
	labels, counts := splitCounts(stats.ByCategory, nil)
	borders := make([]string, len(labels))
	for i := range labels {
		borders[i] = categoryColors[i%len(categoryColors)]
	}
	return doughnut("categoryChart", "By category", labels, counts, borders)
}

// Priority is a doughnut coloured by priority, cyan for anything unknown.
func (b *ChartBuilder) Priority(stats *domain.Stats) Chart {
	labels, counts := splitCounts(stats.ByPriority, domain.Capitalize)
	borders := make([]string, len(stats.ByPriority))
	for i, c := range stats.ByPriority {
		borders[i] = colorOr(priorityColors, c.Key)
	}
	return doughnut("priorityChart", "By priority", labels, counts, borders)
}

// Status is a pie coloured by status, cyan for anything unknown.
func (b *ChartBuilder) Status(stats *domain.Stats) Chart {
	labels, counts := splitCounts(stats.ByStatus, nil)
	backgrounds := make([]string, len(stats.ByStatus))
	for i, c := range stats.ByStatus {
		backgrounds[i] = colorOr(statusColors, c.Key) + "BB"
	}
	return Chart{
		ID:    "statusChart",
		Title: "By status",
		Type:  "pie",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Data:            counts,
				BackgroundColor: backgrounds,
				BorderColor:     pieBorderColor,
				BorderWidth:     3,
				HoverOffset:     6,
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins":    map[string]any{"legend": bottomLegend(14, 12)},
		},
	}
}

// ModelAccuracy returns a row for each accuracy the backend reported.
func (b *ChartBuilder) ModelAccuracy(stats *domain.Stats) []AccuracyBar {
	ms := stats.ModelStats
	candidates := []struct {
		key, label string
		value      float64
	}{
		{"category", "Category", ms.CategoryAccuracy},
		{"priority", "Priority", ms.PriorityAccuracy},
		{"queue", "Queue", ms.QueueAccuracy},
	}

	var bars []AccuracyBar
	for _, c := range candidates {
		if c.value == 0 {
			continue
		}
		pct := strconv.FormatFloat(c.value, 'f', -1, 64) + "%"
		width := c.value
		if width > 100 {
			width = 100
		} else if width < 0 {
			width = 0
		}
		bars = append(bars, AccuracyBar{
			Key:     c.key,
			Label:   c.label,
			Value:   c.value,
			Display: pct,
			Width:   strconv.FormatFloat(width, 'f', -1, 64) + "%",
		})
	}
	return bars
}

func doughnut(id, title string, labels []string, counts []float64, borders []string) Chart {
	backgrounds := make([]string, len(borders))
	for i, c := range borders {
		backgrounds[i] = c + "CC"
	}
	return Chart{
		ID:    id,
		Title: title,
		Type:  "doughnut",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Data:            counts,
				BackgroundColor: backgrounds,
				BorderColor:     borders,
				BorderWidth:     2,
				HoverOffset:     6,
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins":    map[string]any{"legend": bottomLegend(16, 12)},
			"cutout":     "65%",
		},
	}
}

func bottomLegend(padding, fontSize int) map[string]any {
	return map[string]any{
		"position": "bottom",
		"labels": map[string]any{
			"boxWidth": 12,
			"padding":  padding,
			"font":     map[string]any{"size": fontSize},
		},
	}
}

func splitCounts(buckets []domain.CountByKey, label func(string) string) ([]string, []float64) {
	labels := make([]string, len(buckets))
	counts := make([]float64, len(buckets))
	for i, c := range buckets {
		labels[i] = c.Key
		if label != nil {
			labels[i] = label(c.Key)
		}
		counts[i] = float64(c.Count)
	}
	return labels, counts
}

func colorOr(colors map[string]string, key string) string {
	if c, ok := colors[key]; ok {
		return c
	}
	return ColorCyan
}
