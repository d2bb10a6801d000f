// Package chart renders per-category spending as a PNG pie chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

// ErrNoData is returned when every category total is zero.
var ErrNoData = errors.New("no spending to chart")

const (
	DefaultWidth  = 1200
	DefaultHeight = 600
)

// Renderer draws pie charts with a fixed canvas size.
type Renderer struct {
	Width  int
	Height int
	Title  string
	// Format, when set, is appended to each slice label.
	Format func(core.Money) string
}

func New(format func(core.Money) string) *Renderer {
	return &Renderer{Width: DefaultWidth, Height: DefaultHeight, Format: format}
}

// Values converts totals into chart slices, skipping empty categories.
func (r *Renderer) Values(totals report.Totals) []gochart.Value {
	values := make([]gochart.Value, 0, len(totals))
	for _, t := range totals {
		if t.Amount.Cents <= 0 {
			continue
		}
		label := t.Name
		if r.Format != nil {
			label = fmt.Sprintf("%s %s", t.Name, r.Format(t.Amount))
		}
		values = append(values, gochart.Value{Label: label, Value: t.Amount.Units()})
	}
	return values
}

// PNG renders totals as a pie chart.
func (r *Renderer) PNG(totals report.Totals) ([]byte, error) {
	values := r.Values(totals)
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := gochart.PieChart{
		Title:  r.Title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: gochart.Style{
			Padding:   gochart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: gochart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
