package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"hisab/internal/ledger"
)

// pieChartPNG renders one proportion chart. Callers must not pass an empty
// aggregate; empty charts are omitted from the report, never rendered.
func pieChartPNG(title string, totals []ledger.LabelTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, fmt.Errorf("empty aggregate for chart %q", title)
	}
	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		v, _ := t.Total.Float64()
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", t.Label, t.Total.StringFixed(2)),
			Value: v,
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no positive slices for chart %q", title)
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  480,
		Height: 480,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
