package charts

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sprintbot/internal/report"
)

// Renderer rasterizes report series into PNG bytes for image delivery.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// BurndownPNG renders the actual and ideal remaining-work lines of a sprint.
func (r *Renderer) BurndownPNG(points []report.BurndownPoint, sprintName string) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no burndown points to render")
	}

	dates := make([]time.Time, 0, len(points))
	actual := make([]float64, 0, len(points))
	ideal := make([]float64, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Date)
		actual = append(actual, float64(p.Actual))
		ideal = append(ideal, p.Ideal)
	}

	graph := chart.Chart{
		Title:  "Burndown - " + sprintName,
		Width:  1024,
		Height: 612,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Actual",
				XValues: dates,
				YValues: actual,
			},
			chart.TimeSeries{
				Name:    "Ideal",
				XValues: dates,
				YValues: ideal,
				Style: chart.Style{
					StrokeColor:     drawing.ColorRed,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering burndown chart: %w", err)
	}
	return buf.Bytes(), nil
}

// StatusCountsPNG renders a bar chart of issue counts per status label.
func (r *Renderer) StatusCountsPNG(counts map[string]int, title string) ([]byte, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("no status counts to render")
	}

	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	bars := make([]chart.Value, 0, len(statuses))
	for _, status := range statuses {
		bars = append(bars, chart.Value{Label: status, Value: float64(counts[status])})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    1024,
		Height:   612,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering status chart: %w", err)
	}
	return buf.Bytes(), nil
}
