package seq

// Record is one recorded grasp sequence as stored in its archive.
type Record struct {
	Path         string
	Frames       int
	NComps       int
	FrameRate    float64
	Gender       string
	SubjectID    string
	ObjectName   string
	MotionIntent string

	Body   Entity
	Object Entity
	Table  Entity
	LHand  Entity
	RHand  Entity

	Contact Contact
}

// Entity holds one entity's per-frame parameter trajectories and the
// dataset-relative path of its reference mesh.
type Entity struct {
	Params map[string]Array
	Mesh   string
}

// Contact holds per-frame, per-vertex contact values of shape (T, V).
type Contact struct {
	Body   Array
	Object Array
}

// Mask returns which vertices are in contact at frame t, i.e. whose value is
// strictly greater than zero.
func Mask(a Array, t int) []bool {
	row := a.Row(t)
	mask := make([]bool, len(row))
	for i, v := range row {
		mask[i] = v > 0
	}
	return mask
}

// CountContacts returns the number of contact vertices per frame.
func CountContacts(a Array) []int {
	counts := make([]int, a.Rows())
	for t := range counts {
		for _, v := range a.Row(t) {
			if v > 0 {
				counts[t]++
			}
		}
	}
	return counts
}
