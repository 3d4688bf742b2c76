package seq

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npy"
	"gonum.org/v1/gonum/mat"
)

// WriteArchive writes arrays as float64 .npy members of an npz archive,
// plus meta.json when m is not nil. Members are written in name order.
func WriteArchive(filename string, arrays map[string]Array, m *Meta) error {
	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer w.Close()
	zipWriter := zip.NewWriter(w)

	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := npyValue(arrays[name])
		if err != nil {
			return errors.Wrapf(err, "seq: encode %s", name)
		}
		fileWriter, err := zipWriter.Create(name + ".npy")
		if err != nil {
			return err
		}
		if err := npy.Write(fileWriter, v); err != nil {
			return errors.Wrapf(err, "seq: encode %s", name)
		}
	}
	if m != nil {
		fileWriter, err := zipWriter.Create(MetaName)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(fileWriter).Encode(m); err != nil {
			return err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return err
	}
	return w.Close()
}

// EncodeNPY encodes a as a little-endian float64 .npy file.
func EncodeNPY(a Array) ([]byte, error) {
	v, err := npyValue(a)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := npy.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// npyValue picks the Go value npy.Write turns into an array of a's shape.
func npyValue(a Array) (interface{}, error) {
	n := 1
	for _, d := range a.Shape {
		if d < 0 {
			return nil, errors.Errorf("negative dimension in shape %v", a.Shape)
		}
		n *= d
	}
	if n != len(a.Data) {
		return nil, errors.Errorf("shape %v holds %d values, have %d", a.Shape, n, len(a.Data))
	}
	switch len(a.Shape) {
	case 0:
		return a.Data[0], nil
	case 1:
		return a.Data, nil
	}
	if n == 0 {
		return nil, errors.Errorf("empty shape %v", a.Shape)
	}
	if len(a.Shape) == 2 {
		return mat.NewDense(a.Shape[0], a.Shape[1], a.Data), nil
	}

	// fixed size arrays carry every dimension through the writer
	t := reflect.TypeOf(float64(0))
	for i := len(a.Shape) - 1; i >= 0; i-- {
		t = reflect.ArrayOf(a.Shape[i], t)
	}
	arr := reflect.New(t).Elem()
	fill(arr, a.Data)
	return arr.Interface(), nil
}

func fill(v reflect.Value, data []float64) {
	if v.Kind() == reflect.Float64 {
		v.SetFloat(data[0])
		return
	}
	step := len(data) / v.Len()
	for i := 0; i < v.Len(); i++ {
		fill(v.Index(i), data[i*step:(i+1)*step])
	}
}
