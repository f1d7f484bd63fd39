package contract

import (
	"sort"

	"github.com/mitchellh/hashstructure/v2"
)

// digestArgs hashes every argument not declared mutable. Hashing
// follows pointers, slices and maps and covers exported struct fields,
// so a change made through any of them alters the digest. Arguments
// that cannot be hashed, such as functions and channels, are skipped.
func digestArgs(b Bound, mutable map[string]bool) map[string]uint64 {
	out := make(map[string]uint64, len(b))
	for k, v := range b {
		if mutable[k] {
			continue
		}
		h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
		if err != nil {
			continue
		}
		out[k] = h
	}
	return out
}

func checkDigests(name string, b Bound, before map[string]uint64) error {
	names := make([]string, 0, len(before))
	for k := range before {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		h, err := hashstructure.Hash(b[k], hashstructure.FormatV2, nil)
		if err != nil || h != before[k] {
			return &ObjectModifiedError{Function: name, Name: k}
		}
	}
	return nil
}
