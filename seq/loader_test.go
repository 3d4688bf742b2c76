package seq

import (
	"path/filepath"
	"strings"
	"testing"
)

func zeros(shape ...int) Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return Array{Shape: shape, Data: make([]float64, n)}
}

func scalar(x float64) Array {
	return Array{Shape: []int{1}, Data: []float64{x}}
}

func testArrays(frames, bodyVerts, objVerts int) map[string]Array {
	contactBody := zeros(frames, bodyVerts)
	contactBody.Data[1] = 1
	contactObj := zeros(frames, objVerts)
	contactObj.Data[objVerts] = 0.5
	contactObj.Data[objVerts+1] = -1
	return map[string]Array{
		"n_frames":                    scalar(float64(frames)),
		"n_comps":                     scalar(24),
		"framerate":                   scalar(30),
		"body/params/transl":          zeros(frames, 3),
		"body/params/global_orient":   zeros(frames, 3),
		"body/params/betas":           zeros(1, 10),
		"object/params/transl":        zeros(frames, 3),
		"object/params/global_orient": zeros(frames, 3),
		"table/params/transl":         zeros(frames, 3),
		"table/params/global_orient":  zeros(frames, 3),
		"lhand/params/transl":         zeros(frames, 3),
		"contact/body":                contactBody,
		"contact/object":              contactObj,
	}
}

func testMeta() *Meta {
	return &Meta{
		Gender:       "male",
		SubjectID:    "s1",
		ObjectName:   "apple",
		MotionIntent: "eat",
		BodyVTemp:    "tools/subject_meshes/male/s1.ply",
		ObjectMesh:   "tools/object_meshes/contact_meshes/apple.ply",
		TableMesh:    "tools/object_meshes/contact_meshes/table.ply",
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apple_eat_1.npz")
	if err := WriteArchive(path, testArrays(3, 4, 2), testMeta()); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	rec, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Path != path || rec.Frames != 3 || rec.NComps != 24 || rec.FrameRate != 30 {
		t.Fatalf("record header = %+v", rec)
	}
	if rec.Gender != "male" || rec.ObjectName != "apple" || rec.MotionIntent != "eat" || rec.SubjectID != "s1" {
		t.Fatalf("record meta = %+v", rec)
	}
	if rec.Body.Mesh != "tools/subject_meshes/male/s1.ply" || !strings.HasSuffix(rec.Table.Mesh, "table.ply") {
		t.Fatalf("mesh paths body=%q table=%q", rec.Body.Mesh, rec.Table.Mesh)
	}
	if len(rec.Body.Params) != 3 || len(rec.Object.Params) != 2 || len(rec.LHand.Params) != 1 {
		t.Fatalf("param counts body=%d object=%d lhand=%d", len(rec.Body.Params), len(rec.Object.Params), len(rec.LHand.Params))
	}
	if got := rec.Body.Params["transl"].Shape; len(got) != 2 || got[0] != 3 || got[1] != 3 {
		t.Fatalf("transl shape = %v", got)
	}
	if got := rec.Body.Params["betas"].Rows(); got != 1 {
		t.Fatalf("betas rows = %d", got)
	}

	mask := Mask(rec.Contact.Body, 0)
	if len(mask) != 4 || mask[0] || !mask[1] || mask[2] || mask[3] {
		t.Fatalf("body mask = %v", mask)
	}
	mask = Mask(rec.Contact.Object, 1)
	if len(mask) != 2 || !mask[0] || mask[1] {
		t.Fatalf("object mask frame 1 = %v", mask)
	}
	counts := CountContacts(rec.Contact.Object)
	if len(counts) != 3 || counts[0] != 0 || counts[1] != 1 || counts[2] != 0 {
		t.Fatalf("object counts = %v", counts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(map[string]Array, *Meta) *Meta
		substr string
	}{
		{"no meta", func(a map[string]Array, m *Meta) *Meta { return nil }, "meta.json"},
		{"no gender", func(a map[string]Array, m *Meta) *Meta { m.Gender = ""; return m }, "gender"},
		{"no frames", func(a map[string]Array, m *Meta) *Meta { delete(a, "n_frames"); return m }, "n_frames"},
		{"no table params", func(a map[string]Array, m *Meta) *Meta {
			delete(a, "table/params/transl")
			delete(a, "table/params/global_orient")
			return m
		}, "table params"},
		{"no object mesh", func(a map[string]Array, m *Meta) *Meta { m.ObjectMesh = ""; return m }, "object mesh"},
		{"bad rows", func(a map[string]Array, m *Meta) *Meta { a["object/params/transl"] = zeros(2, 3); return m }, "rows"},
		{"no contact", func(a map[string]Array, m *Meta) *Meta { delete(a, "contact/body"); return m }, "contact/body"},
		{"short contact", func(a map[string]Array, m *Meta) *Meta { a["contact/object"] = zeros(2, 2); return m }, "contact/object"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seq.npz")
			arrays := testArrays(3, 4, 2)
			m := tc.edit(arrays, testMeta())
			if err := WriteArchive(path, arrays, m); err != nil {
				t.Fatalf("write archive: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("load succeeded")
			}
			if !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("error %q does not mention %q", err, tc.substr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.npz")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromFortran(t *testing.T) {
	// [[1 2 3] [4 5 6]] stored column-major
	got := fromFortran([]float64{1, 4, 2, 5, 3, 6}, []int{2, 3})
	want := []float64{1, 2, 3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fromFortran = %v, want %v", got, want)
		}
	}
}

func TestEncodeNPYShapeMismatch(t *testing.T) {
	if _, err := EncodeNPY(Array{Shape: []int{2, 2}, Data: []float64{1, 2, 3}}); err == nil {
		t.Fatal("expected shape error")
	}
}

func TestWriteArchiveShapes(t *testing.T) {
	cube := zeros(2, 3, 4)
	for i := range cube.Data {
		cube.Data[i] = float64(i)
	}
	arrays := map[string]Array{
		"cube":   cube,
		"plane":  {Shape: []int{3, 2}, Data: []float64{1, 2, 3, 4, 5, 6}},
		"line":   {Shape: []int{2}, Data: []float64{7, 8}},
		"scalar": {Shape: []int{}, Data: []float64{9}},
	}
	path := filepath.Join(t.TempDir(), "shapes.npz")
	if err := WriteArchive(path, arrays, nil); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	got, err := ReadArchive(path, func(string) bool { return true })
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	for name, want := range arrays {
		a, ok := got[name]
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if len(a.Shape) != len(want.Shape) {
			t.Fatalf("%s shape = %v, want %v", name, a.Shape, want.Shape)
		}
		for i := range want.Shape {
			if a.Shape[i] != want.Shape[i] {
				t.Fatalf("%s shape = %v, want %v", name, a.Shape, want.Shape)
			}
		}
		if a.Len() != want.Len() {
			t.Fatalf("%s has %d values, want %d", name, a.Len(), want.Len())
		}
		for i := range want.Data {
			if a.Data[i] != want.Data[i] {
				t.Fatalf("%s[%d] = %v, want %v", name, i, a.Data[i], want.Data[i])
			}
		}
	}
	if got["scalar"].Scalar() != 9 {
		t.Errorf("scalar = %v", got["scalar"].Scalar())
	}
}
