// Package relocate moves homestead points that fall inside a building
// footprint to just outside the footprint boundary, so the imported node
// does not end up glued onto the building outline in the editor.
package relocate

import (
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/spatial"
)

// maxAttempts bounds the margin doubling when the offset point keeps
// landing inside another footprint.
const maxAttempts = 3

// Relocator nudges building-category candidates out of footprints. A nil
// index disables relocation.
type Relocator struct {
	idx     *spatial.PolygonIndex
	marginM float64

	Relocated int
	Failed    int
}

// NewRelocator creates a Relocator placing points marginM meters outside
// the footprint boundary.
func NewRelocator(idx *spatial.PolygonIndex, marginM float64) *Relocator {
	return &Relocator{idx: idx, marginM: marginM}
}

// Enabled reports whether a footprint index is loaded.
func (r *Relocator) Enabled() bool {
	return r != nil && r.idx != nil && r.idx.Len() > 0
}

// Relocate moves the candidate's point outside its containing footprint, if
// any. The margin doubles on each retry; when no placement clears all
// footprints the original point is kept and the failure counted.
func (r *Relocator) Relocate(c *place.Candidate, rule catalog.Rule) {
	if !r.Enabled() || rule.Category != catalog.CategoryBuilding {
		return
	}

	poly := r.idx.Containing(c.Point)
	if poly == nil {
		return
	}

	boundary, ok := poly.NearestBoundary(c.Point)
	if !ok {
		r.Failed++
		return
	}

	margin := r.marginM
	for attempt := 0; attempt < maxAttempts; attempt++ {
		moved := spatial.OffsetM(c.Point, boundary, margin)
		if !r.idx.ContainsAny(moved) {
			c.Point = moved
			c.Relocated = true
			r.Relocated++
			return
		}
		margin *= 2
	}

	r.Failed++
	zap.L().Debug("point not relocatable, keeping original",
		zap.String("component", "relocate"),
		zap.String("stedsnummer", c.ID),
	)
}
