package seq

import (
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

var ErrNotEnoughSequences = errors.New("seq: not enough sequences to sample")

// Glob lists archives under root/<subject>/ whose file name contains tag,
// relative to root and sorted.
func Glob(root, tag string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*", "*"+tag+"*.npz"))
	if err != nil {
		return nil, errors.Wrap(err, "seq: glob")
	}
	rel := make([]string, 0, len(matches))
	for _, m := range matches {
		r, err := filepath.Rel(root, m)
		if err != nil {
			return nil, errors.Wrap(err, "seq: glob")
		}
		rel = append(rel, r)
	}
	sort.Strings(rel)
	return rel, nil
}

// Select returns the sequences to render. A non-empty explicit list is
// returned as given. Otherwise n distinct sequences matching tag are drawn
// uniformly with rng.
func Select(root string, explicit []string, tag string, n int, rng *rand.Rand) ([]string, error) {
	if len(explicit) > 0 {
		return append([]string(nil), explicit...), nil
	}
	candidates, err := Glob(root, tag)
	if err != nil {
		return nil, err
	}
	if len(candidates) < n {
		return nil, errors.Wrapf(ErrNotEnoughSequences, "want %d, found %d matching %q under %s", n, len(candidates), tag, root)
	}
	perm := rng.Perm(len(candidates))
	out := make([]string, n)
	for i := range out {
		out[i] = candidates[perm[i]]
	}
	return out, nil
}
