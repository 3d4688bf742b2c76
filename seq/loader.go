package seq

import (
	"archive/zip"
	"encoding/json"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// MetaName is the archive member carrying the string fields of a record.
const MetaName = "meta.json"

// Meta is the JSON document stored as meta.json.
type Meta struct {
	Gender       string `json:"gender"`
	SubjectID    string `json:"sbj_id"`
	ObjectName   string `json:"obj_name"`
	MotionIntent string `json:"motion_intent"`
	BodyVTemp    string `json:"body_vtemp"`
	ObjectMesh   string `json:"object_mesh"`
	TableMesh    string `json:"table_mesh"`
}

// Load reads a sequence archive. Numeric fields are .npy members named by
// their nested key path ("body/params/transl.npy"); string fields live in
// meta.json.
func Load(filename string) (*Record, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "seq: open %s", filename)
	}
	defer zr.Close()

	rec, err := decode(&zr.Reader)
	if err != nil {
		return nil, errors.Wrapf(err, "seq: load %s", filename)
	}
	rec.Path = filename
	return rec, nil
}

func decode(zr *zip.Reader) (*Record, error) {
	arrays := map[string]Array{}
	var m *Meta
	for _, f := range zr.File {
		switch {
		case f.Name == MetaName:
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			m = &Meta{}
			err = json.NewDecoder(rc).Decode(m)
			rc.Close()
			if err != nil {
				return nil, errors.Wrap(err, "decode meta")
			}
		case strings.HasSuffix(f.Name, ".npy"):
			a, err := readNPYFile(f)
			if err != nil {
				return nil, err
			}
			arrays[strings.TrimSuffix(f.Name, ".npy")] = a
		}
	}
	if m == nil {
		return nil, errors.New("missing " + MetaName)
	}
	if m.Gender == "" {
		return nil, errors.New("missing gender")
	}

	n, ok := arrays["n_frames"]
	if !ok || n.Len() == 0 {
		return nil, errors.New("missing n_frames")
	}
	rec := &Record{
		Frames:       int(n.Scalar()),
		Gender:       m.Gender,
		SubjectID:    m.SubjectID,
		ObjectName:   m.ObjectName,
		MotionIntent: m.MotionIntent,
	}
	if rec.Frames <= 0 {
		return nil, errors.Errorf("invalid n_frames %d", rec.Frames)
	}
	if a, ok := arrays["n_comps"]; ok {
		rec.NComps = int(a.Scalar())
	}
	if a, ok := arrays["framerate"]; ok {
		rec.FrameRate = a.Scalar()
	}

	var err error
	if rec.Body, err = entity(arrays, "body", m.BodyVTemp, rec.Frames, true); err != nil {
		return nil, err
	}
	if rec.Object, err = entity(arrays, "object", m.ObjectMesh, rec.Frames, true); err != nil {
		return nil, err
	}
	if rec.Table, err = entity(arrays, "table", m.TableMesh, rec.Frames, true); err != nil {
		return nil, err
	}
	if rec.LHand, err = entity(arrays, "lhand", "", rec.Frames, false); err != nil {
		return nil, err
	}
	if rec.RHand, err = entity(arrays, "rhand", "", rec.Frames, false); err != nil {
		return nil, err
	}

	if rec.Contact.Body, err = contact(arrays, "body", rec.Frames); err != nil {
		return nil, err
	}
	if rec.Contact.Object, err = contact(arrays, "object", rec.Frames); err != nil {
		return nil, err
	}
	return rec, nil
}

func entity(arrays map[string]Array, name, mesh string, frames int, required bool) (Entity, error) {
	prefix := path.Join(name, "params") + "/"
	e := Entity{Params: map[string]Array{}, Mesh: mesh}
	for key, a := range arrays {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		param := strings.TrimPrefix(key, prefix)
		if r := a.Rows(); r != frames && r != 1 {
			return Entity{}, errors.Errorf("%s param %s has %d rows, want %d", name, param, r, frames)
		}
		e.Params[param] = a
	}
	if !required {
		return e, nil
	}
	if len(e.Params) == 0 {
		return Entity{}, errors.Errorf("missing %s params", name)
	}
	if mesh == "" {
		return Entity{}, errors.Errorf("missing %s mesh path", name)
	}
	return e, nil
}

func contact(arrays map[string]Array, name string, frames int) (Array, error) {
	a, ok := arrays["contact/"+name]
	if !ok {
		return Array{}, errors.Errorf("missing contact/%s", name)
	}
	if len(a.Shape) != 2 || a.Shape[0] != frames {
		return Array{}, errors.Errorf("contact/%s has shape %v, want (%d, V)", name, a.Shape, frames)
	}
	return a, nil
}
