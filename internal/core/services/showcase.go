package services

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ShowcaseFile is the declarative demo chart set drawn on the landing page.
type ShowcaseFile struct {
	Palette map[string]string `yaml:"palette"`
	Charts  []ShowcaseChart   `yaml:"charts"`
}

type ShowcaseChart struct {
	ID         string            `yaml:"id"`
	Title      string            `yaml:"title"`
	Type       string            `yaml:"type"` // doughnut, bar or line
	Labels     []string          `yaml:"labels"`
	Tooltip    string            `yaml:"tooltip"`
	TickSuffix string            `yaml:"tick_suffix"`
	StepSize   float64           `yaml:"step_size"`
	Datasets   []ShowcaseDataset `yaml:"datasets"`
}

type ShowcaseDataset struct {
	Label  string    `yaml:"label"`
	Data   []float64 `yaml:"data"`
	Colors []string  `yaml:"colors"` // palette names
}

// LoadShowcase decodes showcase YAML and builds its chart descriptors.
func LoadShowcase(r io.Reader) ([]Chart, error) {
	var file ShowcaseFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode showcase: %w", err)
	}
	return file.Build()
}

// Build validates the file and converts each entry into a Chart.
func (f *ShowcaseFile) Build() ([]Chart, error) {
	charts := make([]Chart, 0, len(f.Charts))
	for _, sc := range f.Charts {
		if sc.ID == "" {
			return nil, fmt.Errorf("showcase chart without id")
		}
		for _, ds := range sc.Datasets {
			if len(ds.Data) != len(sc.Labels) {
				return nil, fmt.Errorf("showcase chart %s: dataset %q has %d points for %d labels",
					sc.ID, ds.Label, len(ds.Data), len(sc.Labels))
			}
		}

		var (
			chart Chart
			err   error
		)
		switch sc.Type {
		case "doughnut":
			chart, err = f.doughnut(sc)
		case "bar":
			chart, err = f.bar(sc)
		case "line":
			chart, err = f.line(sc)
		default:
			err = fmt.Errorf("showcase chart %s: unsupported type %q", sc.ID, sc.Type)
		}
		if err != nil {
			return nil, err
		}
		chart.Title = sc.Title
		chart.Tooltip = sc.Tooltip
		chart.TickSuffix = sc.TickSuffix
		charts = append(charts, chart)
	}
	return charts, nil
}

func (f *ShowcaseFile) color(chartID, name string) (string, error) {
	c, ok := f.Palette[name]
	if !ok {
		return "", fmt.Errorf("showcase chart %s: unknown colour %q", chartID, name)
	}
	return c, nil
}

func (f *ShowcaseFile) doughnut(sc ShowcaseChart) (Chart, error) {
	if len(sc.Datasets) != 1 {
		return Chart{}, fmt.Errorf("showcase chart %s: doughnut needs exactly one dataset", sc.ID)
	}
	ds := sc.Datasets[0]
	if len(ds.Colors) != len(ds.Data) {
		return Chart{}, fmt.Errorf("showcase chart %s: doughnut needs one colour per slice", sc.ID)
	}

	borders := make([]string, len(ds.Colors))
	backgrounds := make([]string, len(ds.Colors))
	for i, name := range ds.Colors {
		c, err := f.color(sc.ID, name)
		if err != nil {
			return Chart{}, err
		}
		borders[i] = c
		backgrounds[i] = c + "CC"
	}

	return Chart{
		ID:   sc.ID,
		Type: "doughnut",
		Data: ChartData{
			Labels: sc.Labels,
			Datasets: []Dataset{{
				Label:           ds.Label,
				Data:            ds.Data,
				BackgroundColor: backgrounds,
				BorderColor:     borders,
				BorderWidth:     2,
				HoverOffset:     8,
			}},
		},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": true,
			"plugins":             map[string]any{"legend": bottomLegend(12, 11)},
			"cutout":              "65%",
		},
	}, nil
}

func (f *ShowcaseFile) bar(sc ShowcaseChart) (Chart, error) {
	datasets := make([]Dataset, 0, len(sc.Datasets))
	for _, ds := range sc.Datasets {
		c, err := f.singleColor(sc.ID, ds)
		if err != nil {
			return Chart{}, err
		}
		datasets = append(datasets, Dataset{
			Label:           ds.Label,
			Data:            ds.Data,
			BackgroundColor: c + "DD",
			BorderColor:     c,
			BorderWidth:     2,
			BorderRadius:    6,
			Gradient:        &Gradient{From: c + "DD", To: c + "33"},
		})
	}

	return Chart{
		ID:   sc.ID,
		Type: "bar",
		Data: ChartData{Labels: sc.Labels, Datasets: datasets},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": true,
			"plugins":             map[string]any{"legend": map[string]any{"display": false}},
			"scales":              axes(sc.StepSize),
		},
	}, nil
}

func (f *ShowcaseFile) line(sc ShowcaseChart) (Chart, error) {
	datasets := make([]Dataset, 0, len(sc.Datasets))
	for _, ds := range sc.Datasets {
		c, err := f.singleColor(sc.ID, ds)
		if err != nil {
			return Chart{}, err
		}
		datasets = append(datasets, Dataset{
			Label:           ds.Label,
			Data:            ds.Data,
			BackgroundColor: c + "44",
			BorderColor:     c,
			BorderWidth:     2,
			Fill:            true,
			Tension:         0.4,
			Gradient:        &Gradient{From: c + "44", To: c + "00"},
		})
	}

	legend := map[string]any{
		"position": "top",
		"labels": map[string]any{
			"boxWidth": 12,
			"padding":  16,
			"font":     map[string]any{"size": 11},
		},
	}
	return Chart{
		ID:   sc.ID,
		Type: "line",
		Data: ChartData{Labels: sc.Labels, Datasets: datasets},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": true,
			"interaction":         map[string]any{"mode": "index", "intersect": false},
			"plugins":             map[string]any{"legend": legend},
			"scales":              axes(sc.StepSize),
		},
	}, nil
}

func (f *ShowcaseFile) singleColor(chartID string, ds ShowcaseDataset) (string, error) {
	if len(ds.Colors) != 1 {
		return "", fmt.Errorf("showcase chart %s: dataset %q needs exactly one colour", chartID, ds.Label)
	}
	return f.color(chartID, ds.Colors[0])
}

func axes(stepSize float64) map[string]any {
	y := map[string]any{
		"beginAtZero": true,
		"grid":        map[string]any{"color": "#F1F5F9"},
	}
	if stepSize > 0 {
		y["ticks"] = map[string]any{"stepSize": stepSize}
	}
	return map[string]any{
		"y": y,
		"x": map[string]any{"grid": map[string]any{"display": false}},
	}
}
