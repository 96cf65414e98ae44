package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// integerTicks labels whole iterations, thinned to about ten ticks past a span of 20.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	step := 1
	if span := int(math.Floor(max) - math.Ceil(min)); span > 20 {
		step = span / 10
	}
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i += step {
		ticks = append(ticks, plot.Tick{
			Value: float64(i),
			Label: fmt.Sprintf("%d", i),
		})
	}
	return ticks
}

// ROCCurve is one labelled curve for GenerateROCPlot.
type ROCCurve struct {
	Label string
	TPR   []float64
	FPR   []float64
}

var curveColors = []color.RGBA{
	{R: 150, G: 150, B: 150, A: 255},
	{R: 50, G: 100, B: 200, A: 255},
	{R: 255, G: 100, B: 100, A: 255},
}

// GenerateAUCTracePlot draws AUC against iteration; aucs[0] is the seed.
func GenerateAUCTracePlot(aucs []float64) (string, error) {
	if len(aucs) == 0 {
		return "", fmt.Errorf("no AUC values to plot")
	}
	p := plot.New()
	p.Title.Text = "AUC per Iteration"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "AUC"
	p.X.Tick.Marker = integerTicks{}
	p.Y.Min = 0
	p.Y.Max = 1

	points := make(plotter.XYs, len(aucs))
	for i, auc := range aucs {
		points[i].X = float64(i)
		points[i].Y = auc
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	p.Legend.Add("AUC", line)
	p.Legend.Top = true

	return renderSVG(p)
}

// GenerateROCPlot overlays ROC curves with the chance diagonal.
func GenerateROCPlot(curves []ROCCurve) (string, error) {
	p := plot.New()
	p.Title.Text = "ROC"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return "", err
	}
	chance.Color = curveColors[0]
	chance.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(chance)

	for i, c := range curves {
		if len(c.TPR) != len(c.FPR) {
			return "", fmt.Errorf("curve %q: %d TPR values but %d FPR values", c.Label, len(c.TPR), len(c.FPR))
		}
		pts := make(plotter.XYs, len(c.TPR))
		for k := range c.TPR {
			pts[k].X = c.FPR[k]
			pts[k].Y = c.TPR[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", err
		}
		line.Color = curveColors[1+i%(len(curveColors)-1)]
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(c.Label, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	return renderSVG(p)
}

func renderSVG(p *plot.Plot) (string, error) {
	var buf bytes.Buffer
	writer, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return "", err
	}
	_, err = writer.WriteTo(&buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteSVG stores a rendered plot.
func WriteSVG(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
