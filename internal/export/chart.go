package export

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"GBMForecast/internal/model"
)

var (
	pathColor = color.RGBA{R: 31, G: 119, B: 180, A: 26}
	meanColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	bandColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	dashes    = []vg.Length{vg.Points(6), vg.Points(3)}
)

// SaveChart renders every path as a thin translucent line, with dashed
// horizontal lines at the mean and percentile band. The image format follows
// the file extension (png, svg, pdf).
func SaveChart(path string, ens *model.PathEnsemble, summary model.SummaryStatistics, title string) error {
	if ens.Paths() == 0 {
		return errors.New("export: empty ensemble")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Days into the future"
	p.Y.Label.Text = "Simulated price"
	p.Add(plotter.NewGrid())

	steps := ens.Steps()
	for i := 0; i < ens.Paths(); i++ {
		xys := make(plotter.XYs, steps)
		for t := 0; t < steps; t++ {
			xys[t].X = float64(t)
			xys[t].Y = ens.At(t, i)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("path %d: %w", i, err)
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = pathColor
		p.Add(line)
	}

	xMax := float64(max(steps-1, 1))
	mean := horizontal(summary.MeanFinalPrice, xMax, meanColor)
	lower := horizontal(summary.LowerPercentile, xMax, bandColor)
	upper := horizontal(summary.UpperPercentile, xMax, bandColor)
	p.Add(mean, lower, upper)

	p.Legend.Add(fmt.Sprintf("Mean final price: $%s", money(summary.MeanFinalPrice)), mean)
	p.Legend.Add(fmt.Sprintf("%s%% interval: [$%s, $%s]",
		decimal.NewFromFloat(summary.Confidence*100).Round(2).String(),
		money(summary.LowerPercentile), money(summary.UpperPercentile)), lower)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(12*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

func horizontal(y, xMax float64, c color.Color) *plotter.Function {
	fn := plotter.NewFunction(func(float64) float64 { return y })
	fn.XMin, fn.XMax = 0, xMax
	fn.Samples = 2
	fn.Color = c
	fn.Width = vg.Points(1.5)
	fn.Dashes = dashes
	return fn
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
