package output

import "sort"

// Change is one renamed feature in a diff.
type Change struct {
	ID      string
	OldName string
	NewName string
}

// DiffResult summarizes the registry changes between two runs of the same
// scope, keyed by ssr:stedsnr.
type DiffResult struct {
	Added   []string // identifiers present only in the newer run
	Removed []string // identifiers present only in the older run
	Renamed []Change
}

// Empty reports whether the two runs are identical by identifier and name.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Renamed) == 0
}

// Diff compares an older and a newer feature collection. Features without a
// registry identifier are ignored.
func Diff(older, newer []Feature) DiffResult {
	oldByID := byID(older)
	newByID := byID(newer)

	var d DiffResult
	for id, nf := range newByID {
		of, ok := oldByID[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if of.Tags["name"] != nf.Tags["name"] {
			d.Renamed = append(d.Renamed, Change{
				ID:      id,
				OldName: of.Tags["name"],
				NewName: nf.Tags["name"],
			})
		}
	}
	for id := range oldByID {
		if _, ok := newByID[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Renamed, func(i, j int) bool { return d.Renamed[i].ID < d.Renamed[j].ID })
	return d
}

func byID(feats []Feature) map[string]Feature {
	m := make(map[string]Feature, len(feats))
	for _, f := range feats {
		if id := f.ID(); id != "" {
			m[id] = f
		}
	}
	return m
}
