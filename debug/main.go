// Command debug prints statistics about a reference mesh: size, bounds,
// whether it is watertight and how far the wireframe decimation shrinks it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/netisu/grabview"
	"github.com/unixpickle/model3d/model3d"
)

func main() {
	var factor float64
	flag.Float64Var(&factor, "simplify", 0.25, "wireframe decimation factor to report")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <mesh.ply|mesh.obj|mesh.glb>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	fmt.Println("--- STARTING DEBUG ---")
	mesh, err := grabview.LoadMesh(path)
	if err != nil {
		log.Fatal(err)
	}

	box := mesh.BoundingBox()
	fmt.Printf("--- MESH STATS ---\n")
	fmt.Printf("Vertices: %d\n", len(mesh.Vertices))
	fmt.Printf("Faces: %d\n", len(mesh.Faces))
	fmt.Printf("Bounding Box Min: %+v\n", box.Min)
	fmt.Printf("Bounding Box Max: %+v\n", box.Max)
	fmt.Printf("Bounding Box Center: %+v\n", box.Center())

	m3 := model3d.NewMeshTriangles(toModel3D(mesh))
	fmt.Printf("Surface Area: %f\n", m3.Area())
	if m3.NeedsRepair() {
		fmt.Println("Mesh is NOT watertight")
	} else {
		fmt.Println("Mesh is watertight")
	}

	view := grabview.NewMeshViewFromMesh(mesh, grabview.Named["grey"], grabview.Wireframe())
	simplified := view.Simplify(factor)
	fmt.Printf("Wireframe edges: %d -> %d at factor %.2f\n",
		len(view.Lines()), len(simplified.Lines()), factor)
}

func toModel3D(m *grabview.Mesh) []*model3d.Triangle {
	coord := func(v grabview.Vector) model3d.Coord3D {
		return model3d.XYZ(v.X, v.Y, v.Z)
	}
	ts := make([]*model3d.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		ts[i] = &model3d.Triangle{coord(m.Vertices[f[0]]), coord(m.Vertices[f[1]]), coord(m.Vertices[f[2]])}
	}
	return ts
}
