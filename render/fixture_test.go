package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netisu/grabview/model"
	"github.com/netisu/grabview/seq"
)

// dataset lays out a tiny GRAB tree under a temp dir:
//
//	data/grab/s1/<name>.npz
//	data/tools/...      reference meshes
//	models/smplx/       SMPL-X model files
type dataset struct {
	root string
	cfg  Config
}

func newDataset(t *testing.T) *dataset {
	t.Helper()
	root := t.TempDir()
	d := &dataset{
		root: root,
		cfg: Config{
			GrabPath:   filepath.Join(root, "data", "grab"),
			RenderPath: filepath.Join(root, "render"),
			ModelPath:  filepath.Join(root, "models"),
		},
	}
	d.writeOBJ(t, "tools/subject_meshes/male/s1.obj",
		"v 0 0 0\nv 0.2 0 0\nv 0.2 0.2 0\nv 0 0.2 0\n")
	d.writeOBJ(t, "tools/object_meshes/contact_meshes/apple.obj",
		"v 0 0 0.1\nv 0.1 0 0.1\nv 0 0.1 0.1\nf 1 2 3\n")
	d.writeOBJ(t, "tools/object_meshes/contact_meshes/table.obj",
		"v -1 -1 0\nv 1 -1 0\nv 1 1 0\nv -1 1 0\nf 1 2 3\nf 1 3 4\n")

	modelDir := filepath.Join(d.cfg.ModelPath, "smplx")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := seq.WriteArchive(filepath.Join(modelDir, "SMPLX_MALE.npz"), bodyModel(4), nil); err != nil {
		t.Fatal(err)
	}
	return d
}

func (d *dataset) writeOBJ(t *testing.T, rel, body string) {
	t.Helper()
	path := filepath.Join(d.root, "data", rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

// addSequence writes s1/<name>.npz with the given number of frames and
// returns its dataset-relative path.
func (d *dataset) addSequence(t *testing.T, name string, frames int) string {
	t.Helper()
	rel := filepath.Join("s1", name+".npz")
	path := filepath.Join(d.cfg.GrabPath, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}

	contactBody := zeros(frames, 4)
	contactObj := zeros(frames, 3)
	for f := 0; f < frames; f++ {
		contactBody.Data[f*4+f%4] = 1
		contactObj.Data[f*3] = 0.5
	}
	transl := zeros(frames, 3)
	for f := 0; f < frames; f++ {
		transl.Data[f*3+2] = 0.01 * float64(f)
	}
	arrays := map[string]seq.Array{
		"n_frames":                    {Shape: []int{1}, Data: []float64{float64(frames)}},
		"n_comps":                     {Shape: []int{1}, Data: []float64{6}},
		"framerate":                   {Shape: []int{1}, Data: []float64{30}},
		"body/params/transl":          zeros(frames, 3),
		"body/params/global_orient":   zeros(frames, 3),
		"body/params/body_pose":       zeros(frames, 63),
		"body/params/left_hand_pose":  zeros(frames, 6),
		"body/params/right_hand_pose": zeros(frames, 6),
		"body/params/betas":           zeros(1, 10),
		"body/params/fullpose":        zeros(frames, 165),
		"object/params/transl":        transl,
		"object/params/global_orient": zeros(frames, 3),
		"table/params/transl":         zeros(frames, 3),
		"table/params/global_orient":  zeros(frames, 3),
		"contact/body":                contactBody,
		"contact/object":              contactObj,
	}
	meta := &seq.Meta{
		Gender:       "male",
		SubjectID:    "s1",
		ObjectName:   strings.SplitN(name, "_", 2)[0],
		MotionIntent: "eat",
		BodyVTemp:    "tools/subject_meshes/male/s1.obj",
		ObjectMesh:   "tools/object_meshes/contact_meshes/apple.obj",
		TableMesh:    "tools/object_meshes/contact_meshes/table.obj",
	}
	if err := seq.WriteArchive(path, arrays, meta); err != nil {
		t.Fatal(err)
	}
	return rel
}

func zeros(shape ...int) seq.Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return seq.Array{Shape: shape, Data: make([]float64, n)}
}

// bodyModel is a minimal SMPL-X model over v vertices where every vertex
// follows the root joint.
func bodyModel(v int) map[string]seq.Array {
	const k = 20
	j := model.NumJoints
	jreg := zeros(j, v)
	for i := 0; i < j; i++ {
		jreg.Data[i*v] = 1
	}
	weights := zeros(v, j)
	for i := 0; i < v; i++ {
		weights.Data[i*j] = 1
	}
	kintree := zeros(2, j)
	kintree.Data[0] = 4294967295
	for i := 1; i < j; i++ {
		kintree.Data[i] = float64(i - 1)
		kintree.Data[j+i] = float64(i)
	}
	comps := zeros(45, 45)
	for i := 0; i < 45; i++ {
		comps.Data[i*45+i] = 1
	}
	faces := zeros(2, 3)
	copy(faces.Data, []float64{0, 1, 2, 0, 2, 3})
	return map[string]seq.Array{
		"f":                 faces,
		"shapedirs":         zeros(v, 3, k),
		"posedirs":          zeros(v, 3, 9*(j-1)),
		"J_regressor":       jreg,
		"weights":           weights,
		"kintree_table":     kintree,
		"hands_componentsl": comps,
		"hands_componentsr": comps,
		"hands_meanl":       zeros(45),
		"hands_meanr":       zeros(45),
	}
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Width = 32
	opts.Height = 32
	opts.Supersample = 1
	return opts
}

func frameFiles(dir string, frames ...int) []string {
	var out []string
	for _, f := range frames {
		out = append(out, filepath.Join(dir, fmt.Sprintf("%04d.png", f)))
	}
	return out
}
