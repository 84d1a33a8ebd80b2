package charts

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"climagraph/internal/mapping"
	"climagraph/internal/series"
)

const (
	plotWidth  = 12 * vg.Inch
	plotHeight = 6 * vg.Inch
)

var exteriorDashes = []vg.Length{vg.Points(6), vg.Points(3)}

func (e *Engine) newPlot(title, xLabel, yLabel string, timeAxis bool) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	if timeAxis {
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	}
	return p
}

func (e *Engine) encodePNG(p *plot.Plot, gt GraphType, xLabel, yLabel string) (*Result, error) {
	writer, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("charts: render %s: %w", gt.ID, err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("charts: render %s: %w", gt.ID, err)
	}
	return &Result{
		TypeID: gt.ID,
		Title:  p.Title.Text,
		XLabel: xLabel,
		YLabel: yLabel,
		PNG:    buf.Bytes(),
	}, nil
}

// addLine styles and registers a sensor line, dashing exterior sensors.
func (e *Engine) addLine(p *plot.Plot, name string, xys plotter.XYs, idx int) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(idx)
	if IsExterior(name, e.markers) {
		line.Dashes = exteriorDashes
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func (e *Engine) renderFieldOverTime(gt GraphType, input []*series.Series, field mapping.Field, yLabel string) (*Result, error) {
	p := e.newPlot(gt.Name, "Date", yLabel, true)

	points := 0
	for i, s := range input {
		xys := make(plotter.XYs, 0, len(s.Records))
		for _, r := range s.Records {
			value, ok := fieldValue(r, field)
			if !ok {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(r.At.Unix()), Y: value})
		}
		points += len(xys)
		if err := e.addLine(p, s.SensorName, xys, i); err != nil {
			return nil, fmt.Errorf("charts: %s: %w", gt.ID, err)
		}
	}
	if points == 0 {
		return nil, fmt.Errorf("%w: no %s records in selection", ErrInsufficientData, field)
	}
	return e.encodePNG(p, gt, "Date", yLabel)
}

func (e *Engine) renderDailyAmplitude(gt GraphType, input []*series.Series, field mapping.Field, yLabel string) (*Result, error) {
	p := e.newPlot(gt.Name, "Day", yLabel, true)

	points := 0
	for i, s := range input {
		amplitudes := DailyAmplitude(s, field)
		xys := make(plotter.XYs, 0, len(amplitudes))
		for _, dv := range amplitudes {
			xys = append(xys, plotter.XY{X: float64(dv.Day.Unix()), Y: dv.Value})
		}
		points += len(xys)
		if err := e.addLine(p, s.SensorName, xys, i); err != nil {
			return nil, fmt.Errorf("charts: %s: %w", gt.ID, err)
		}
	}
	if points == 0 {
		return nil, fmt.Errorf("%w: no day with two or more %s samples", ErrInsufficientData, field)
	}
	return e.encodePNG(p, gt, "Day", yLabel)
}

func (e *Engine) renderHumidityProfile(gt GraphType, input []*series.Series) (*Result, error) {
	p := e.newPlot(gt.Name, "Sensor", "Humidity (%)", false)

	names := make([]string, 0, len(input))
	boxes := 0
	for i, s := range input {
		values := make(plotter.Values, 0, len(s.Records))
		for _, r := range s.Records {
			if r.Humidity != nil {
				values = append(values, *r.Humidity)
			}
		}
		names = append(names, s.SensorName)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), values)
		if err != nil {
			return nil, fmt.Errorf("charts: %s: %w", gt.ID, err)
		}
		p.Add(box)
		boxes++
	}
	if boxes == 0 {
		return nil, fmt.Errorf("%w: no humidity records in selection", ErrInsufficientData)
	}
	p.NominalX(names...)
	return e.encodePNG(p, gt, "Sensor", "Humidity (%)")
}

func (e *Engine) renderDewPointRisk(gt GraphType, input []*series.Series) (*Result, error) {
	yLabel := "Temperature - dew point (°C)"
	p := e.newPlot(gt.Name, "Date", yLabel, true)

	points := 0
	var minX, maxX float64
	for i, s := range input {
		risk := DewPointRisk(s)
		xys := make(plotter.XYs, 0, len(risk))
		for _, rp := range risk {
			x := float64(rp.At.Unix())
			if points == 0 && len(xys) == 0 {
				minX, maxX = x, x
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			xys = append(xys, plotter.XY{X: x, Y: rp.Margin})
		}
		points += len(xys)
		if err := e.addLine(p, s.SensorName, xys, i); err != nil {
			return nil, fmt.Errorf("charts: %s: %w", gt.ID, err)
		}
	}
	if points == 0 {
		return nil, fmt.Errorf("%w: no dew point records in selection", ErrInsufficientData)
	}

	// Band thresholds: margin 0 separates critical, riskMarginC separates
	// at-risk from safe.
	for idx, threshold := range []float64{0, riskMarginC} {
		line, err := plotter.NewLine(plotter.XYs{{X: minX, Y: threshold}, {X: maxX, Y: threshold}})
		if err != nil {
			return nil, fmt.Errorf("charts: %s: %w", gt.ID, err)
		}
		line.Dashes = plotutil.Dashes(idx + 1)
		p.Add(line)
	}
	p.Legend.Add("condensation threshold", plotLegendDummy())
	return e.encodePNG(p, gt, "Date", yLabel)
}

// plotLegendDummy builds a thin line thumbnail for threshold legend entries.
func plotLegendDummy() *plotter.Line {
	line, _ := plotter.NewLine(plotter.XYs{})
	line.Dashes = plotutil.Dashes(1)
	return line
}
