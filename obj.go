package grabview

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func LoadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadOBJFromReader(file)
}

func LoadOBJFromBytes(b []byte) (*Mesh, error) {
	return LoadOBJFromReader(bytes.NewReader(b))
}

// LoadOBJFromReader keeps vertex order and indexing; texture coordinates
// and normals are ignored. Polygons are fan triangulated.
func LoadOBJFromReader(r io.Reader) (*Mesh, error) {
	vs := make([]Vector, 0, 1024)
	var faces [][3]int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) < 2 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj: line %d: vertex needs 3 coordinates", lineNo)
			}
			vs = append(vs, Vector{pf(fields[1]), pf(fields[2]), pf(fields[3])})
		case "f":
			args := fields[1:]
			if len(args) < 3 {
				return nil, errors.Errorf("obj: line %d: face needs 3 vertices", lineNo)
			}
			fvs := make([]int, len(args))
			for i, arg := range args {
				vertex := strings.SplitN(arg, "/", 2)
				idx, err := fixIndex(vertex[0], len(vs))
				if err != nil {
					return nil, errors.Wrapf(err, "obj: line %d", lineNo)
				}
				fvs[i] = idx
			}
			for i := 1; i < len(fvs)-1; i++ {
				faces = append(faces, [3]int{fvs[0], fvs[i], fvs[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	mesh := NewMesh(vs, faces)
	return mesh, mesh.Validate()
}

// Helper for fast float parsing
func pf(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// fixIndex converts a one-based, possibly negative OBJ index to zero-based.
func fixIndex(value string, length int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return parsed + length, nil
	}
	return parsed - 1, nil
}
