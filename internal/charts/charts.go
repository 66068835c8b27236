// Package charts renders interactive HTML charts of a collection with go-echarts.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/codwats/prism/internal/prism"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string // Chart title
	Subtitle string // Chart subtitle
	Width    string // Chart width (e.g., "900px")
	Height   string // Chart height (e.g., "500px")
	Theme    string // Chart theme
	Colors   []string
	TopN     int // Bars in the most shared chart
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "600px",
		Theme:  "light",
		Colors: []string{"#F5F4CF", "#ECC933", "#C73D2B"},
		TopN:   20,
	}
}

func initOpts(config ChartConfig) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:  config.Width,
		Height: config.Height,
		Theme:  config.Theme,
	})
}

// RenderOverlapHeatMap draws the deck by deck shared card matrix. Each cell is the
// number of unique cards two decks have in common; the diagonal is a deck's own
// unique card count.
func RenderOverlapHeatMap(decks []prism.Deck, config ChartConfig, w io.Writer) error {
	if config.Title == "" {
		config.Title = "Deck Overlap"
	}

	labels := make([]string, len(decks))
	for i, d := range decks {
		labels[i] = fmt.Sprintf("%d. %s", i+1, d.Name)
	}

	matrix := prism.OverlapMatrix(decks)
	peak := 0
	var cells []opts.HeatMapData
	for i, row := range matrix {
		for j, shared := range row {
			peak = max(peak, shared)
			cells = append(cells, opts.HeatMapData{Value: [3]interface{}{j, i, shared}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(config),
		charts.WithTitleOpts(opts.Title{Title: config.Title, Subtitle: config.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(peak, 1)),
			InRange:    &opts.VisualMapInRange{Color: config.Colors},
		}),
	)
	hm.SetXAxis(labels).AddSeries("Shared cards", cells,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderMostSharedBar draws the cards used by the most decks, each bar split into
// the colours of the decks that need it.
func RenderMostSharedBar(data *prism.ProcessedData, config ChartConfig, w io.Writer) error {
	if config.Title == "" {
		config.Title = "Most Shared Cards"
	}
	topN := config.TopN
	if topN <= 0 {
		topN = DefaultChartConfig().TopN
	}

	var cards []prism.ProcessedCard
	for _, c := range data.Cards {
		if c.DeckCount < 2 {
			continue
		}
		cards = append(cards, c)
		if len(cards) == topN {
			break
		}
	}

	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.CanonicalName
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(config),
		charts.WithTitleOpts(opts.Title{Title: config.Title, Subtitle: config.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 30}}),
	)
	bar.SetXAxis(names)

	// One stacked series per deck, in stripe order.
	for _, d := range data.Decks {
		values := make([]opts.BarData, len(cards))
		for i, c := range cards {
			var v int
			for _, id := range c.DeckIDs {
				if id == d.ID {
					v = 1
					break
				}
			}
			values[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(d.Name, values, charts.WithItemStyleOpts(opts.ItemStyle{Color: d.AssignedColor}))
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "decks"}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderToFile creates outputPath and renders into it.
func RenderToFile(outputPath string, render func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return render(f)
}
