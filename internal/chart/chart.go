// Package chart renders the calories line chart as a PNG.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/record"
)

// Title is drawn above the plot area.
const Title = "Calories Burned Over Time"

const (
	DefaultWidth  = 800
	DefaultHeight = 400

	maxXLabels = 8
	yTicks     = 5
	markerSize = 3.5
)

var (
	lineColor = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	gridColor = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	axisColor = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
)

// Options sets the image size in pixels. Zero values select the defaults.
type Options struct {
	Width  int
	Height int
}

// Point is one sample on the line.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Chart is a rendered line chart.
type Chart struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
	PNG    []byte  `json:"-"`
}

// Render plots calories_burned against date in table order, with a marker at
// every sample. An absent column or a bad value fails with RENDER_ERROR; an
// empty table renders empty axes.
func Render(t *record.Table, opt Options) (*Chart, error) {
	points, err := collect(t)
	if err != nil {
		return nil, err
	}

	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	if w < 200 || h < 150 {
		return nil, errors.NewRender(fmt.Sprintf("chart size %dx%d is too small", w, h))
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	if err := draw(dc, points, float64(w), float64(h)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.NewRender(fmt.Sprintf("failed to encode PNG: %v", err))
	}
	return &Chart{Title: Title, Points: points, PNG: buf.Bytes()}, nil
}

func collect(t *record.Table) ([]Point, error) {
	col := t.Index(record.ColCaloriesBurned)
	if col < 0 {
		return nil, errors.NewRender("calories_burned column is absent")
	}
	points := make([]Point, t.Len())
	for i, r := range t.Rows {
		v, err := t.Number(i, col)
		if err != nil {
			return nil, errors.NewRender(fmt.Sprintf("row %d: calories_burned is not a number", i+1))
		}
		points[i] = Point{Date: r.Date, Value: v}
	}
	return points, nil
}

func draw(dc *gg.Context, points []Point, w, h float64) error {
	titleFace, err := face(16)
	if err != nil {
		return err
	}
	labelFace, err := face(11)
	if err != nil {
		return err
	}

	const left, right, top, bottom = 70.0, 20.0, 40.0, 55.0
	plotW, plotH := w-left-right, h-top-bottom

	lo, hi := bounds(points)
	x := func(i int) float64 {
		if len(points) == 1 {
			return left + plotW/2
		}
		return left + plotW*float64(i)/float64(len(points)-1)
	}
	y := func(v float64) float64 {
		return top + plotH*(1-(v-lo)/(hi-lo))
	}

	// title
	dc.SetFontFace(titleFace)
	dc.SetColor(axisColor)
	dc.DrawStringAnchored(Title, w/2, top/2, 0.5, 0.5)

	// y grid and tick labels
	dc.SetFontFace(labelFace)
	dc.SetLineWidth(1)
	for k := 0; k <= yTicks; k++ {
		v := lo + (hi-lo)*float64(k)/yTicks
		py := y(v)
		dc.SetColor(gridColor)
		dc.DrawLine(left, py, left+plotW, py)
		dc.Stroke()
		dc.SetColor(axisColor)
		dc.DrawStringAnchored(tickLabel(v), left-8, py, 1, 0.5)
	}

	// axes
	dc.SetColor(axisColor)
	dc.DrawLine(left, top, left, top+plotH)
	dc.DrawLine(left, top+plotH, left+plotW, top+plotH)
	dc.Stroke()

	// x tick labels
	step := int(math.Ceil(float64(len(points)) / maxXLabels))
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(points); i += step {
		px := x(i)
		dc.DrawLine(px, top+plotH, px, top+plotH+4)
		dc.Stroke()
		dc.DrawStringAnchored(points[i].Date.Format("2006-01-02"), px, top+plotH+16, 0.5, 0.5)
	}
	dc.DrawStringAnchored("date", left+plotW/2, h-12, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 16, top+plotH/2)
	dc.DrawStringAnchored(record.ColCaloriesBurned, 16, top+plotH/2, 0.5, 0.5)
	dc.Pop()

	if len(points) == 0 {
		dc.DrawStringAnchored("No data", left+plotW/2, top+plotH/2, 0.5, 0.5)
		return nil
	}

	// series
	dc.SetColor(lineColor)
	dc.SetLineWidth(2)
	for i, p := range points {
		if i == 0 {
			dc.MoveTo(x(i), y(p.Value))
			continue
		}
		dc.LineTo(x(i), y(p.Value))
	}
	dc.Stroke()
	for i, p := range points {
		dc.DrawCircle(x(i), y(p.Value), markerSize)
		dc.Fill()
	}
	return nil
}

// bounds returns a padded value range that is never empty.
func bounds(points []Point) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 1
	}
	lo, hi = points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func tickLabel(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, errors.NewRender(fmt.Sprintf("failed to parse font: %v", fontErr))
	}
	return truetype.NewFace(goFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
