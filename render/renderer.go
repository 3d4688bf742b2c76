package render

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/netisu/grabview"
	"github.com/netisu/grabview/seq"
	"github.com/pkg/errors"
)

const (
	GIFName  = "Traj.gif"
	PlotName = "contacts.svg"
)

// Renderer owns the offscreen viewer for a whole run. It renders one
// sequence at a time and must be closed when done.
type Renderer struct {
	Config  Config
	Options Options
	Rand    *rand.Rand

	viewer *grabview.MeshViewer
}

// Result lists the files written for one sequence.
type Result struct {
	Dir    string
	Frames []string
	GIF    string
	Plot   string
}

// New opens a viewer and places the camera once for the session.
func New(cfg Config, opts Options) (*Renderer, error) {
	if opts.SkipFrame <= 0 {
		return nil, errors.Errorf("render: skip frame %d", opts.SkipFrame)
	}
	pose, err := grabview.CameraPose(opts.CameraAngles, opts.CameraOrder, opts.CameraPosition)
	if err != nil {
		return nil, err
	}
	mv := grabview.NewMeshViewer(opts.Width, opts.Height, opts.Supersample)
	if err := mv.UpdateCameraPose(pose); err != nil {
		return nil, err
	}
	return &Renderer{
		Config:  cfg,
		Options: opts,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		viewer:  mv,
	}, nil
}

func (r *Renderer) Close() error {
	return r.viewer.Close()
}

// Sequences renders the given dataset-relative sequences in order, or a
// random sample of SampleCount sequences matching ActionTag when seqs is
// empty. The first failure stops the run.
func (r *Renderer) Sequences(seqs []string) ([]*Result, error) {
	selected, err := seq.Select(r.Config.GrabPath, seqs, r.Options.ActionTag, r.Options.SampleCount, r.Rand)
	if err != nil {
		return nil, err
	}
	bar := newProgressBar(len(selected))
	defer bar.Finish()

	results := make([]*Result, 0, len(selected))
	for _, rel := range selected {
		res, err := r.Sequence(rel)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		bar.Increment()
	}
	return results, nil
}

func newProgressBar(total int) *pb.ProgressBar {
	template := `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . "%.03f%%" "?"}} {{etime . "%s elapsed"}} {{rtime . "%s remain" "%s total" "???"}}`
	return pb.ProgressBarTemplate(template).Start(total)
}

// FrameIndices returns 0, skip, 2*skip, ... below frames.
func FrameIndices(frames, skip int) []int {
	var out []int
	for f := 0; f < frames; f += skip {
		out = append(out, f)
	}
	return out
}

// FrameName is the snapshot file name of frame.
func FrameName(frame int) string {
	return fmt.Sprintf("%04d.png", frame)
}

// OutputDir mirrors a dataset-relative sequence path under the render root.
func OutputDir(cfg Config, rel string) string {
	return filepath.Join(cfg.RenderPath, strings.TrimSuffix(rel, filepath.Ext(rel)))
}

// Sequence renders one sequence given relative to GrabPath.
func (r *Renderer) Sequence(rel string) (*Result, error) {
	if filepath.IsAbs(rel) {
		var err error
		if rel, err = filepath.Rel(r.Config.GrabPath, rel); err != nil {
			return nil, errors.Wrap(err, "render: sequence path")
		}
	}
	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.Errorf("render: %s is outside %s", rel, r.Config.GrabPath)
	}
	path := filepath.Join(r.Config.GrabPath, rel)
	log.Println("Rendering", path, "...")

	rec, err := seq.Load(path)
	if err != nil {
		return nil, err
	}
	scene, err := Evaluate(r.Config, rec)
	if err != nil {
		return nil, errors.Wrapf(err, "render: %s", rel)
	}

	dir := OutputDir(r.Config, rel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "render: output dir")
	}

	res := &Result{Dir: dir}
	var images []image.Image
	for _, frame := range FrameIndices(rec.Frames, r.Options.SkipFrame) {
		views, err := r.Views(scene, frame)
		if err != nil {
			return nil, errors.Wrapf(err, "render: %s frame %d", rel, frame)
		}
		if err := r.viewer.SetStaticMeshes(views); err != nil {
			return nil, err
		}
		out := filepath.Join(dir, FrameName(frame))
		img, err := r.viewer.SaveSnapshot(out)
		if err != nil {
			return nil, errors.Wrapf(err, "render: %s frame %d", rel, frame)
		}
		images = append(images, img)
		res.Frames = append(res.Frames, out)
	}

	res.GIF = filepath.Join(dir, GIFName)
	if err := SaveGIF(res.GIF, images, r.Options.GIFDelay); err != nil {
		return nil, err
	}
	res.Plot = filepath.Join(dir, PlotName)
	if err := SaveContactPlot(res.Plot, rec); err != nil {
		return nil, err
	}
	return res, nil
}

// Views builds the object, body, body wireframe and table views of one
// frame, in that order. Contact vertices of the object and body are
// recolored.
func (r *Renderer) Views(s *Scene, frame int) ([]*grabview.MeshView, error) {
	o := r.Options
	colors := map[string]grabview.Color{}
	for _, name := range []string{o.ObjectColor, o.BodyColor, o.WireframeColor, o.TableColor, o.ContactColor} {
		c, err := grabview.NamedColor(name)
		if err != nil {
			return nil, err
		}
		colors[name] = c
	}
	contact := colors[o.ContactColor]

	obj := grabview.NewMeshView(fromR3(s.Object.Frame(frame)), s.ObjectFaces, colors[o.ObjectColor])
	if err := obj.SetVertexColors(contact, seq.Mask(s.Record.Contact.Object, frame)); err != nil {
		return nil, errors.Wrap(err, "object contact")
	}

	bodyVerts := fromR3(s.Body.Frame(frame))
	body := grabview.NewMeshView(bodyVerts, s.BodyFaces, colors[o.BodyColor], grabview.Smooth())
	if err := body.SetVertexColors(contact, seq.Mask(s.Record.Contact.Body, frame)); err != nil {
		return nil, errors.Wrap(err, "body contact")
	}

	wire := grabview.NewMeshView(bodyVerts, s.BodyFaces, colors[o.WireframeColor], grabview.Wireframe())
	wire = wire.Simplify(o.WireframeFactor)

	table := grabview.NewMeshView(fromR3(s.Table.Frame(frame)), s.TableFaces, colors[o.TableColor])

	return []*grabview.MeshView{obj, body, wire, table}, nil
}
