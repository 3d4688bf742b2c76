package seq

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
)

// Array is a dense row-major numeric array decoded from one .npy member.
// Every dtype is widened to float64.
type Array struct {
	Shape []int
	Data  []float64
}

func (a Array) Len() int {
	return len(a.Data)
}

// Rows is the leading dimension; scalars count as one row.
func (a Array) Rows() int {
	if len(a.Shape) == 0 {
		return 1
	}
	return a.Shape[0]
}

// Cols is the number of values per row.
func (a Array) Cols() int {
	r := a.Rows()
	if r == 0 {
		return 0
	}
	return len(a.Data) / r
}

func (a Array) Row(i int) []float64 {
	c := a.Cols()
	return a.Data[i*c : (i+1)*c]
}

// Scalar returns the first value, for zero-dimensional arrays.
func (a Array) Scalar() float64 {
	if len(a.Data) == 0 {
		return 0
	}
	return a.Data[0]
}

func readNPYFile(f *zip.File) (Array, error) {
	rc, err := f.Open()
	if err != nil {
		return Array{}, err
	}
	defer rc.Close()
	a, err := ReadNPY(rc)
	return a, errors.Wrapf(err, "read %s", f.Name)
}

// ReadNPY decodes one .npy stream.
func ReadNPY(r io.Reader) (Array, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return Array{}, err
	}
	descr := nr.Header.Descr
	shape := append([]int(nil), descr.Shape...)

	var data []float64
	switch kind := strings.TrimLeft(descr.Type, "<>|="); kind {
	case "f8":
		err = nr.Read(&data)
	case "f4":
		var v []float32
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "i8":
		var v []int64
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "i4":
		var v []int32
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "i2":
		var v []int16
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "i1":
		var v []int8
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "u8":
		var v []uint64
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "u4":
		var v []uint32
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "u2":
		var v []uint16
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "u1":
		var v []uint8
		if err = nr.Read(&v); err == nil {
			data = widen(v)
		}
	case "b1":
		var v []bool
		if err = nr.Read(&v); err == nil {
			data = make([]float64, len(v))
			for i, b := range v {
				if b {
					data[i] = 1
				}
			}
		}
	default:
		return Array{}, errors.Errorf("unsupported dtype %q", descr.Type)
	}
	if err != nil {
		return Array{}, err
	}
	if descr.Fortran && len(shape) > 1 {
		data = fromFortran(data, shape)
	}
	return Array{Shape: shape, Data: data}, nil
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32
}

func widen[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// fromFortran reorders column-major data into row-major order.
func fromFortran(data []float64, shape []int) []float64 {
	out := make([]float64, len(data))
	n := len(shape)
	idx := make([]int, n)
	for i := range data {
		// i walks the row-major layout; compute its column-major offset.
		off, stride := 0, 1
		for d := 0; d < n; d++ {
			off += idx[d] * stride
			stride *= shape[d]
		}
		out[i] = data[off]
		for d := n - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// ReadArchive decodes the .npy members of an npz archive for which want
// returns true, keyed by member name without the .npy suffix. Members that
// are not wanted are never decoded, so archives may carry dtypes ReadNPY
// does not understand.
func ReadArchive(filename string, want func(name string) bool) (map[string]Array, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "seq: open %s", filename)
	}
	defer zr.Close()
	arrays := map[string]Array{}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".npy")
		if !want(name) {
			continue
		}
		a, err := readNPYFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "seq: %s", filename)
		}
		arrays[name] = a
	}
	return arrays, nil
}
