// Package render turns recorded grasp sequences into per-frame snapshots
// and an animated summary per sequence.
package render

import "github.com/netisu/grabview"

// Config holds the three paths the command is started with. It is not
// modified after startup.
type Config struct {
	// GrabPath is the dataset root holding <subject>/<sequence>.npz.
	// Mesh paths inside a sequence are relative to its parent.
	GrabPath string
	// RenderPath is where outputs are written, mirroring GrabPath.
	RenderPath string
	// ModelPath is the folder with the SMPL-X model files.
	ModelPath string
}

// Options are the fixed rendering constants.
type Options struct {
	SkipFrame   int
	SampleCount int
	ActionTag   string

	Width, Height int
	Supersample   int
	// GIFDelay is the per-frame delay of the summary animation in
	// hundredths of a second.
	GIFDelay int
	// WireframeFactor below 1 decimates the body wireframe overlay.
	WireframeFactor float64

	CameraAngles   [3]float64
	CameraOrder    string
	CameraPosition grabview.Vector

	ObjectColor    string
	BodyColor      string
	WireframeColor string
	TableColor     string
	ContactColor   string
}

func DefaultOptions() Options {
	return Options{
		SkipFrame:       20,
		SampleCount:     10,
		ActionTag:       "eat",
		Width:           600,
		Height:          600,
		Supersample:     2,
		GIFDelay:        10,
		WireframeFactor: 1,
		CameraAngles:    [3]float64{80, -15, 0},
		CameraOrder:     "xzx",
		CameraPosition:  grabview.V(-0.5, -1.4, 1.5),
		ObjectColor:     "yellow",
		BodyColor:       "blue",
		WireframeColor:  "grey",
		TableColor:      "white",
		ContactColor:    "red",
	}
}
