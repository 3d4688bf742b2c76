// Command render_grab renders GRAB grasp sequences to per-frame PNG
// snapshots and a looping GIF per sequence.
//
// Sequences are given relative to the dataset root, e.g.
// s1/airplane_fly_1.npz. Without any, ten sequences whose name contains
// "eat" are picked at random.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/netisu/grabview/render"
	"github.com/unixpickle/essentials"
)

func main() {
	var cfg render.Config
	flag.StringVar(&cfg.GrabPath, "grab-path", "", "path to the downloaded grab data")
	flag.StringVar(&cfg.RenderPath, "render-path", "", "path to the folder to save the renderings")
	flag.StringVar(&cfg.ModelPath, "model-path", "", "path to the folder containing smplx models")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] [sequence ...]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if cfg.GrabPath == "" || cfg.RenderPath == "" || cfg.ModelPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	r, err := render.New(cfg, render.DefaultOptions())
	essentials.Must(err)
	defer r.Close()

	results, err := r.Sequences(flag.Args())
	essentials.Must(err)
	for _, res := range results {
		log.Printf("Wrote %d frames to %s", len(res.Frames), res.Dir)
	}
}
