package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/netisu/grabview/seq"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveGIF writes frames, in order, as an endlessly looping GIF. Each frame
// gets its own median-cut palette.
func SaveGIF(path string, frames []image.Image, delay int) error {
	if len(frames) == 0 {
		return errors.New("render: no frames for gif")
	}
	anim := &gif.GIF{LoopCount: 0}
	q := quantize.MedianCutQuantizer{}
	for _, img := range frames {
		b := img.Bounds()
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), img))
		draw.Draw(pm, b, img, b.Min, draw.Src)
		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, delay)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "render: create gif")
	}
	defer file.Close()
	if err := gif.EncodeAll(file, anim); err != nil {
		return errors.Wrap(err, "render: encode gif")
	}
	return file.Close()
}

// SaveContactPlot plots how many body and object vertices are in contact
// on every frame of rec.
func SaveContactPlot(path string, rec *seq.Record) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s %s", rec.SubjectID, rec.ObjectName, rec.MotionIntent)
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "contact vertices"

	for _, c := range []struct {
		name  string
		data  seq.Array
		color color.Color
	}{
		{"body", rec.Contact.Body, color.RGBA{B: 255, A: 255}},
		{"object", rec.Contact.Object, color.RGBA{R: 255, G: 160, A: 255}},
	} {
		counts := seq.CountContacts(c.data)
		pts := make(plotter.XYs, len(counts))
		for i, n := range counts {
			pts[i] = plotter.XY{X: float64(i), Y: float64(n)}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "render: contact plot")
		}
		l.Color = c.color
		p.Add(l)
		p.Legend.Add(c.name, l)
	}

	if err := p.Save(6*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.Wrap(err, "render: save contact plot")
	}
	return nil
}
