package model

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netisu/grabview/seq"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func testTemplate() []r3.Vec {
	return []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
}

// testBodyArrays builds a SMPL-X shaped model over v vertices where every
// joint sits on vertex 0 and every vertex follows the root joint.
func testBodyArrays(v int) map[string]seq.Array {
	const k = 20
	arr := func(data []float64, shape ...int) seq.Array {
		n := 1
		for _, d := range shape {
			n *= d
		}
		if data == nil {
			data = make([]float64, n)
		}
		return seq.Array{Shape: shape, Data: data}
	}

	shapedirs := arr(nil, v, 3, k)
	// beta 0 moves vertex 1 along x
	shapedirs.Data[(1*3+0)*k+0] = 1
	// expression 0 moves vertex 2 along z
	shapedirs.Data[(2*3+2)*k+DefaultNumBetas] = 1

	jreg := arr(nil, NumJoints, v)
	for j := 0; j < NumJoints; j++ {
		jreg.Data[j*v] = 1
	}
	weights := arr(nil, v, NumJoints)
	for i := 0; i < v; i++ {
		weights.Data[i*NumJoints] = 1
	}
	kintree := arr(nil, 2, NumJoints)
	kintree.Data[0] = 4294967295
	for j := 1; j < NumJoints; j++ {
		kintree.Data[j] = float64(j - 1)
		kintree.Data[NumJoints+j] = float64(j)
	}
	comps := arr(nil, handWidth, handWidth)
	for i := 0; i < handWidth; i++ {
		comps.Data[i*handWidth+i] = 1
	}

	return map[string]seq.Array{
		"f":                 arr([]float64{0, 1, 2, 0, 2, 3}, 2, 3),
		"shapedirs":         shapedirs,
		"posedirs":          arr(nil, v, 3, 9*(NumJoints-1)),
		"J_regressor":       jreg,
		"weights":           weights,
		"kintree_table":     kintree,
		"hands_componentsl": comps,
		"hands_componentsr": comps,
		"hands_meanl":       arr(nil, handWidth),
		"hands_meanr":       arr(nil, handWidth),
	}
}

func newTestBody(t *testing.T, nComps, batch int) *Body {
	t.Helper()
	b, err := NewBody(testBodyArrays(4), "male", nComps, testTemplate(), batch)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBodyZeroPose(t *testing.T) {
	b := newTestBody(t, 6, 3)
	out, err := b.Forward(Params{})
	if err != nil {
		t.Fatal(err)
	}
	if s := out.Shape(); s != [3]int{3, 4, 3} {
		t.Fatalf("shape = %v", s)
	}
	for f := 0; f < 3; f++ {
		for i, v := range out.Frame(f) {
			if !near(v, testTemplate()[i]) {
				t.Fatalf("frame %d vertex %d = %v, want %v", f, i, v, testTemplate()[i])
			}
		}
	}
	if len(b.Faces) != 2 || b.Faces[1] != [3]int{0, 2, 3} {
		t.Fatalf("faces = %v", b.Faces)
	}
}

func TestBodyTranslAndOrient(t *testing.T) {
	b := newTestBody(t, 6, 2)
	p := Params{
		"transl":        mat.NewDense(2, 3, []float64{0, 0, 0, 1, 2, 3}),
		"global_orient": mat.NewDense(2, 3, []float64{0, 0, math.Pi / 2, 0, 0, 0}),
		"fullpose":      mat.NewDense(2, 165, nil),
	}
	out, err := b.Forward(p)
	if err != nil {
		t.Fatal(err)
	}
	// frame 0: rotated about the root joint at the origin
	if got := out.Frame(0)[1]; !near(got, r3.Vec{Y: 1}) {
		t.Fatalf("frame 0 vertex 1 = %v", got)
	}
	if got := out.Frame(0)[3]; !near(got, r3.Vec{X: -1}) {
		t.Fatalf("frame 0 vertex 3 = %v", got)
	}
	// frame 1: shifted only
	if got := out.Frame(1)[2]; !near(got, r3.Vec{X: 2, Y: 3, Z: 3}) {
		t.Fatalf("frame 1 vertex 2 = %v", got)
	}
}

func TestBodyShapeBlend(t *testing.T) {
	b := newTestBody(t, 6, 2)
	p := Params{
		"betas":      mat.NewDense(2, 1, []float64{2, 0}),
		"expression": mat.NewDense(2, 1, []float64{0, 0.5}),
	}
	out, err := b.Forward(p)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Frame(0)[1]; !near(got, r3.Vec{X: 3}) {
		t.Fatalf("frame 0 vertex 1 = %v", got)
	}
	if got := out.Frame(1)[1]; !near(got, r3.Vec{X: 1}) {
		t.Fatalf("frame 1 vertex 1 = %v", got)
	}
	if got := out.Frame(1)[2]; !near(got, r3.Vec{X: 1, Y: 1, Z: 0.5}) {
		t.Fatalf("frame 1 vertex 2 = %v", got)
	}
}

// TestBodyKinematicChain poses a three-bone chain along x: joint 1 sits on
// vertex 1 and bends 90 degrees about z, joint 2 sits on vertex 2 and
// follows it.
func TestBodyKinematicChain(t *testing.T) {
	const v = 4
	arrays := testBodyArrays(v)

	jreg := arrays["J_regressor"]
	for j := 0; j < NumJoints; j++ {
		for i := 0; i < v; i++ {
			jreg.Data[j*v+i] = 0
		}
		switch j {
		case 1:
			jreg.Data[j*v+1] = 1
		case 2:
			jreg.Data[j*v+2] = 1
		default:
			jreg.Data[j*v] = 1
		}
	}
	weights := arrays["weights"]
	for i := range weights.Data {
		weights.Data[i] = 0
	}
	weights.Data[0*NumJoints+0] = 1
	weights.Data[1*NumJoints+1] = 1
	weights.Data[2*NumJoints+1] = 1
	weights.Data[3*NumJoints+2] = 1

	// joint 1 features: R00-1 moves vertex 0 along y, R01 moves vertex 2
	// along x
	pd := arrays["posedirs"]
	features := 9 * (NumJoints - 1)
	pd.Data[(0*3+1)*features+0] = 1
	pd.Data[(2*3+0)*features+1] = 0.5

	template := []r3.Vec{{}, {X: 1}, {X: 2}, {X: 3}}
	b, err := NewBody(arrays, "male", 6, template, 1)
	if err != nil {
		t.Fatal(err)
	}
	bodyPose := mat.NewDense(1, numBodyJoints*3, nil)
	bodyPose.Set(0, 2, math.Pi/2)
	out, err := b.Forward(Params{
		"body_pose": bodyPose,
		"transl":    mat.NewDense(1, 3, []float64{0, 0, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []r3.Vec{
		{X: 0, Y: -1, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 0.5, Z: 1},
		{X: 1, Y: 2, Z: 1},
	}
	for i, got := range out.Frame(0) {
		if !near(got, want[i]) {
			t.Errorf("vertex %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestBodyParamErrors(t *testing.T) {
	tests := map[string]Params{
		"body_pose width": {"body_pose": mat.NewDense(2, 62, nil)},
		"hand pca width":  {"left_hand_pose": mat.NewDense(2, handWidth, nil)},
		"transl batch":    {"transl": mat.NewDense(3, 3, nil)},
		"too many betas":  {"betas": mat.NewDense(2, 11, nil)},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			b := newTestBody(t, 6, 2)
			if _, err := b.Forward(p); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBodyHandPCA(t *testing.T) {
	b := newTestBody(t, 2, 1)
	b.HandMean[0] = make([]float64, handWidth)
	b.HandMean[0][1] = 0.25
	pose := make([]*mat.Dense, len(poseLayout))
	pose[5] = mat.NewDense(1, 2, []float64{0.5, 1})
	full := make([]float64, NumJoints*3)
	b.fullPose(pose, 0, full)

	// left hand starts after root, body, jaw and eyes
	at := 3 + numBodyJoints*3 + 9
	if full[at] != 0.5 || full[at+1] != 1.25 || full[at+2] != 0 {
		t.Fatalf("left hand pose = %v", full[at:at+3])
	}
	for _, x := range full[at+handWidth:] {
		if x != 0 {
			t.Fatalf("right hand pose = %v", full[at+handWidth:])
		}
	}
}

func TestNewBodyErrors(t *testing.T) {
	arrays := testBodyArrays(4)
	if _, err := NewBody(arrays, "male", 6, testTemplate()[:3], 1); err == nil {
		t.Fatal("expected template size error")
	}
	delete(arrays, "weights")
	_, err := NewBody(arrays, "male", 6, testTemplate(), 1)
	if err == nil || !strings.Contains(err.Error(), "weights") {
		t.Fatalf("err = %v, want missing weights", err)
	}
}

func TestModelFile(t *testing.T) {
	root := t.TempDir()
	if got, want := ModelFile(root, "female"), filepath.Join(root, "SMPLX_FEMALE.npz"); got != want {
		t.Fatalf("ModelFile = %q, want %q", got, want)
	}
	if err := os.Mkdir(filepath.Join(root, "smplx"), 0755); err != nil {
		t.Fatal(err)
	}
	if got, want := ModelFile(root, "male"), filepath.Join(root, "smplx", "SMPLX_MALE.npz"); got != want {
		t.Fatalf("ModelFile = %q, want %q", got, want)
	}
}

func TestLoadBody(t *testing.T) {
	root := t.TempDir()
	arrays := testBodyArrays(4)
	// members the model never reads are skipped
	arrays["joint2num"] = seq.Array{Shape: []int{1}, Data: []float64{0}}
	if err := seq.WriteArchive(filepath.Join(root, "SMPLX_NEUTRAL.npz"), arrays, nil); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBody(root, "neutral", 12, testTemplate(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if b.NumVertices() != 4 || b.BatchSize() != 5 || b.pcaWidth() != 12 {
		t.Fatalf("body vertices=%d batch=%d pca=%d", b.NumVertices(), b.BatchSize(), b.pcaWidth())
	}
	if b.Parents[0] != -1 || b.Parents[54] != 53 {
		t.Fatalf("parents = %v", b.Parents)
	}
}
