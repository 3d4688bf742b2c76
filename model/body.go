package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/netisu/grabview/seq"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NumJoints is the SMPL-X joint count: root, 21 body joints, jaw,
	// two eyes and 15 joints per hand.
	NumJoints     = 55
	numBodyJoints = 21
	numHandJoints = 15
	handWidth     = numHandJoints * 3

	// shapeSpaceDim is where expression directions start in model files
	// that carry the full 300 shape components.
	shapeSpaceDim = 300

	DefaultNumBetas       = 10
	DefaultNumExpressions = 10
)

// poseLayout lists the pose parameters in joint order with their widths in
// axis-angle values. Hand widths are replaced by the PCA width when in use.
var poseLayout = []struct {
	name  string
	width int
}{
	{"global_orient", 3},
	{"body_pose", numBodyJoints * 3},
	{"jaw_pose", 3},
	{"leye_pose", 3},
	{"reye_pose", 3},
	{"left_hand_pose", handWidth},
	{"right_hand_pose", handWidth},
}

var bodyArrays = map[string]bool{
	"f":                 true,
	"shapedirs":         true,
	"posedirs":          true,
	"J_regressor":       true,
	"weights":           true,
	"kintree_table":     true,
	"hands_componentsl": true,
	"hands_componentsr": true,
	"hands_meanl":       true,
	"hands_meanr":       true,
}

// Body is a batched SMPL-X model whose rest template is replaced by a
// subject-specific mesh.
type Body struct {
	Gender   string
	NComps   int
	Batch    int
	Template []r3.Vec
	Faces    [][3]int

	// ShapeDirs is (3V x K); row 3v+c holds coordinate c of vertex v.
	ShapeDirs *mat.Dense
	// PoseDirs is (3V x 9(J-1)).
	PoseDirs   *mat.Dense
	JRegressor *mat.Dense // J x V
	Weights    *mat.Dense // V x J
	Parents    []int

	// HandComponents are (NComps x 45) PCA bases, HandMean the 45-wide
	// mean added to the decoded hand pose.
	HandComponents [2]*mat.Dense
	HandMean       [2][]float64

	NumBetas       int
	NumExpressions int
}

// ModelFile returns the SMPL-X file for gender under root, preferring a
// smplx/ subdirectory when one exists.
func ModelFile(root, gender string) string {
	name := fmt.Sprintf("SMPLX_%s.npz", strings.ToUpper(gender))
	dir := filepath.Join(root, "smplx")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return filepath.Join(dir, name)
	}
	return filepath.Join(root, name)
}

// LoadBody reads the SMPL-X model for gender from root.
func LoadBody(root, gender string, nComps int, template []r3.Vec, batch int) (*Body, error) {
	path := ModelFile(root, gender)
	arrays, err := seq.ReadArchive(path, func(name string) bool { return bodyArrays[name] })
	if err != nil {
		return nil, errors.Wrap(err, "model: load body")
	}
	b, err := NewBody(arrays, gender, nComps, template, batch)
	return b, errors.Wrapf(err, "model: %s", path)
}

// NewBody builds a Body from decoded model arrays.
func NewBody(arrays map[string]seq.Array, gender string, nComps int, template []r3.Vec, batch int) (*Body, error) {
	for name := range bodyArrays {
		if _, ok := arrays[name]; !ok {
			return nil, errors.Errorf("missing %s", name)
		}
	}
	if batch <= 0 {
		return nil, errors.Errorf("batch size %d", batch)
	}
	v := len(template)
	if v == 0 {
		return nil, errors.New("empty template")
	}

	sd := arrays["shapedirs"]
	if sd.Len()%(3*v) != 0 {
		return nil, errors.Errorf("shapedirs has %d values, not a multiple of 3 x %d vertices", sd.Len(), v)
	}
	k := sd.Len() / (3 * v)

	pd := arrays["posedirs"]
	if pd.Len() != 3*v*9*(NumJoints-1) {
		return nil, errors.Errorf("posedirs has %d values, want %d", pd.Len(), 3*v*9*(NumJoints-1))
	}

	jr := arrays["J_regressor"]
	if jr.Len() != NumJoints*v {
		return nil, errors.Errorf("J_regressor has %d values, want %d x %d", jr.Len(), NumJoints, v)
	}
	w := arrays["weights"]
	if w.Len() != v*NumJoints {
		return nil, errors.Errorf("weights has %d values, want %d x %d", w.Len(), v, NumJoints)
	}

	kt := arrays["kintree_table"]
	if kt.Len() != 2*NumJoints {
		return nil, errors.Errorf("kintree_table has %d values, want 2 x %d", kt.Len(), NumJoints)
	}
	parents := make([]int, NumJoints)
	for j := range parents {
		p := int(kt.Data[j])
		if p < 0 || p >= NumJoints {
			p = -1
		}
		parents[j] = p
	}
	if parents[0] != -1 {
		return nil, errors.Errorf("root joint has parent %d", parents[0])
	}
	for j := 1; j < NumJoints; j++ {
		if parents[j] < 0 || parents[j] >= j {
			return nil, errors.Errorf("joint %d has parent %d", j, parents[j])
		}
	}

	f := arrays["f"]
	if f.Len()%3 != 0 {
		return nil, errors.Errorf("faces have %d indices", f.Len())
	}
	faces := make([][3]int, f.Len()/3)
	for i := range faces {
		for c := 0; c < 3; c++ {
			idx := int(f.Data[i*3+c])
			if idx < 0 || idx >= v {
				return nil, errors.Errorf("face %d refers to vertex %d of %d", i, idx, v)
			}
			faces[i][c] = idx
		}
	}

	b := &Body{
		Gender:     gender,
		NComps:     nComps,
		Batch:      batch,
		Template:   template,
		Faces:      faces,
		ShapeDirs:  mat.NewDense(3*v, k, sd.Data),
		PoseDirs:   mat.NewDense(3*v, 9*(NumJoints-1), pd.Data),
		JRegressor: mat.NewDense(NumJoints, v, jr.Data),
		Weights:    mat.NewDense(v, NumJoints, w.Data),
		Parents:    parents,
	}

	b.NumBetas = DefaultNumBetas
	b.NumExpressions = DefaultNumExpressions
	if k < b.NumBetas+b.NumExpressions {
		return nil, errors.Errorf("shapedirs has %d components, want at least %d", k, b.NumBetas+b.NumExpressions)
	}
	if off := b.exprOffset(); off+b.NumExpressions > k {
		return nil, errors.Errorf("shapedirs has %d components, expression space needs %d", k, off+b.NumExpressions)
	}

	comps := nComps
	if comps <= 0 {
		comps = handWidth
	}
	if comps > handWidth {
		return nil, errors.Errorf("n_comps %d exceeds %d", nComps, handWidth)
	}
	for i, side := range []string{"l", "r"} {
		hc := arrays["hands_components"+side]
		if hc.Len() != handWidth*handWidth {
			return nil, errors.Errorf("hands_components%s has %d values", side, hc.Len())
		}
		if nComps > 0 {
			b.HandComponents[i] = mat.DenseCopyOf(mat.NewDense(handWidth, handWidth, hc.Data).Slice(0, comps, 0, handWidth))
		} else {
			// hand poses are given directly as axis-angle values
			b.HandComponents[i] = eye(handWidth)
		}
		hm := arrays["hands_mean"+side]
		if hm.Len() != handWidth {
			return nil, errors.Errorf("hands_mean%s has %d values", side, hm.Len())
		}
		b.HandMean[i] = hm.Data
	}
	return b, nil
}

func (b *Body) NumVertices() int { return len(b.Template) }
func (b *Body) BatchSize() int   { return b.Batch }

// exprOffset is the first shapedirs column of the expression space.
func (b *Body) exprOffset() int {
	_, k := b.ShapeDirs.Dims()
	if k > shapeSpaceDim {
		return shapeSpaceDim
	}
	return b.NumBetas
}

func (b *Body) pcaWidth() int {
	r, _ := b.HandComponents[0].Dims()
	return r
}

// Forward runs linear blend skinning for every frame of the batch.
func (b *Body) Forward(p Params) (*Output, error) {
	v := len(b.Template)

	betas, err := b.blendParam(p, "betas", b.NumBetas)
	if err != nil {
		return nil, err
	}
	expr, err := b.blendParam(p, "expression", b.NumExpressions)
	if err != nil {
		return nil, err
	}
	transl, err := p.get("transl", b.Batch, 3)
	if err != nil {
		return nil, err
	}
	pose := make([]*mat.Dense, len(poseLayout))
	for i, l := range poseLayout {
		width := l.width
		if i >= 5 {
			width = b.pcaWidth()
		}
		if pose[i], err = p.get(l.name, b.Batch, width); err != nil {
			return nil, err
		}
	}

	betaDirs := b.ShapeDirs.Slice(0, 3*v, 0, betasWidth(betas, b.NumBetas))
	off := b.exprOffset()
	exprDirs := b.ShapeDirs.Slice(0, 3*v, off, off+betasWidth(expr, b.NumExpressions))

	out := newOutput(b.Batch, v)
	template := mat.NewVecDense(3*v, nil)
	for i, tv := range b.Template {
		template.SetVec(3*i, tv.X)
		template.SetVec(3*i+1, tv.Y)
		template.SetVec(3*i+2, tv.Z)
	}

	var (
		shaped  *mat.VecDense
		joints  *mat.Dense
		bRow    = make([]float64, betasWidth(betas, b.NumBetas))
		eRow    = make([]float64, betasWidth(expr, b.NumExpressions))
		trRow   = make([]float64, 3)
		full    = make([]float64, NumJoints*3)
		rots    = make([]mgl64.Mat3, NumJoints)
		feature = mat.NewVecDense(9*(NumJoints-1), nil)
		posed   = mat.NewVecDense(3*v, nil)
	)
	for t := 0; t < b.Batch; t++ {
		// Shape blend and joint regression only change with the shape
		// parameters.
		if t == 0 || !sameRow(betas, t) || !sameRow(expr, t) {
			shaped, joints = b.shape(template, betaDirs, exprDirs, rowOf(betas, t, bRow), rowOf(expr, t, eRow))
		}

		b.fullPose(pose, t, full)
		for j := range rots {
			rots[j] = rodrigues(full[3*j], full[3*j+1], full[3*j+2])
		}
		// (R - I) features, row-major per joint
		for j := 1; j < NumJoints; j++ {
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					f := rots[j].At(r, c)
					if r == c {
						f--
					}
					feature.SetVec((j-1)*9+r*3+c, f)
				}
			}
		}
		posed.MulVec(b.PoseDirs, feature)
		posed.AddVec(posed, shaped)

		rel := b.chain(rots, joints)

		rowOf(transl, t, trRow)
		shift := mgl64.Vec3{trRow[0], trRow[1], trRow[2]}
		frame := out.Frame(t)
		raw := posed.RawVector().Data
		for i := 0; i < v; i++ {
			var a mgl64.Mat4
			for j, wt := range b.Weights.RawRowView(i) {
				if wt == 0 {
					continue
				}
				a = a.Add(rel[j].Mul(wt))
			}
			pv := mgl64.Vec4{raw[3*i], raw[3*i+1], raw[3*i+2], 1}
			frame[i] = fromVec3(a.Mul4x1(pv).Vec3().Add(shift))
		}
	}
	return out, nil
}

func (b *Body) blendParam(p Params, name string, max int) (*mat.Dense, error) {
	d, ok := p[name]
	if !ok {
		return nil, nil
	}
	r, c := d.Dims()
	if r != b.Batch {
		return nil, errors.Errorf("model: param %s has batch %d, want %d", name, r, b.Batch)
	}
	if c > max {
		return nil, errors.Errorf("model: param %s has width %d, model supports %d", name, c, max)
	}
	return d, nil
}

func betasWidth(d *mat.Dense, def int) int {
	if d == nil {
		return def
	}
	_, c := d.Dims()
	return c
}

// sameRow reports whether row t of d equals row t-1.
func sameRow(d *mat.Dense, t int) bool {
	if d == nil {
		return true
	}
	_, c := d.Dims()
	for i := 0; i < c; i++ {
		if d.At(t, i) != d.At(t-1, i) {
			return false
		}
	}
	return true
}

// shape applies the shape and expression blend shapes and regresses the
// rest joints.
func (b *Body) shape(template *mat.VecDense, betaDirs, exprDirs mat.Matrix, betas, expr []float64) (*mat.VecDense, *mat.Dense) {
	v := len(b.Template)
	shaped := mat.NewVecDense(3*v, nil)
	shaped.CopyVec(template)
	var blend mat.VecDense
	blend.MulVec(betaDirs, mat.NewVecDense(len(betas), betas))
	shaped.AddVec(shaped, &blend)
	blend.Reset()
	blend.MulVec(exprDirs, mat.NewVecDense(len(expr), expr))
	shaped.AddVec(shaped, &blend)

	var joints mat.Dense
	joints.Mul(b.JRegressor, mat.NewDense(v, 3, shaped.RawVector().Data))
	return shaped, &joints
}

// fullPose assembles the 55 axis-angle joint rotations of frame t, decoding
// hand PCA coefficients and adding the hand mean.
func (b *Body) fullPose(pose []*mat.Dense, t int, full []float64) {
	at := 0
	for i, l := range poseLayout {
		if i < 5 {
			rowOf(pose[i], t, full[at:at+l.width])
			at += l.width
			continue
		}
		side := i - 5
		hand := full[at : at+handWidth]
		copy(hand, b.HandMean[side])
		if pose[i] != nil {
			comps := b.HandComponents[side]
			n, _ := comps.Dims()
			for c := 0; c < n; c++ {
				coeff := pose[i].At(t, c)
				if coeff == 0 {
					continue
				}
				for k := 0; k < handWidth; k++ {
					hand[k] += coeff * comps.At(c, k)
				}
			}
		}
		at += handWidth
	}
}

// chain walks the kinematic tree and returns, per joint, the transform
// from rest pose to posed space.
func (b *Body) chain(rots []mgl64.Mat3, joints *mat.Dense) []mgl64.Mat4 {
	world := make([]mgl64.Mat4, NumJoints)
	rest := make([]r3.Vec, NumJoints)
	for j := range rest {
		rest[j] = r3.Vec{X: joints.At(j, 0), Y: joints.At(j, 1), Z: joints.At(j, 2)}
	}
	for j := 0; j < NumJoints; j++ {
		if p := b.Parents[j]; p >= 0 {
			world[j] = world[p].Mul4(rigid(rots[j], r3.Sub(rest[j], rest[p])))
		} else {
			world[j] = rigid(rots[j], rest[j])
		}
	}
	rel := make([]mgl64.Mat4, NumJoints)
	for j, w := range world {
		rel[j] = w.Mul4(mgl64.Translate3D(-rest[j].X, -rest[j].Y, -rest[j].Z))
	}
	return rel
}

func eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
