// Package rank refines the settlement class of place candidates using the
// N50 and N100 cartographic name layers. The registry often tags every
// populated place alike; a nearby point in the large-scale products with a
// matching name carries a better-calibrated class.
package rank

import (
	"strings"
	"unicode"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/dataset"
	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/spatial"
)

// adjustable is the settlement band the auxiliary layers may refine. Larger
// classes (city, town) come from the registry with enough confidence.
var adjustable = map[string]bool{
	"":        true,
	"village": true,
	"hamlet":  true,
	"quarter": true,
}

// Adjuster matches settlement candidates against the N50 and N100 point
// layers. Either index may be nil when the dataset is not available.
type Adjuster struct {
	n50      *spatial.PointIndex[dataset.NamePoint]
	n100     *spatial.PointIndex[dataset.NamePoint]
	maxDistM float64

	Adjusted int
}

// NewAdjuster creates an Adjuster with the given proximity threshold.
func NewAdjuster(n50, n100 *spatial.PointIndex[dataset.NamePoint], maxDistM float64) *Adjuster {
	return &Adjuster{n50: n50, n100: n100, maxDistM: maxDistM}
}

// Enabled reports whether any auxiliary layer is loaded.
func (a *Adjuster) Enabled() bool {
	return a != nil && (a.n50 != nil || a.n100 != nil)
}

// Adjust refines the settlement class of one candidate in place. Only
// settlement types in the adjustable band are touched; the N50 layer is
// consulted before the coarser N100.
func (a *Adjuster) Adjust(c *place.Candidate, rule catalog.Rule) {
	if !a.Enabled() || rule.Category != catalog.CategorySettlement {
		return
	}
	if !adjustable[rule.Tags["place"]] {
		return
	}

	name := foldName(c.PrimaryName())
	if name == "" {
		return
	}

	if np, ok := a.lookup(a.n50, c.Point, name); ok {
		a.apply(c, np, place.RankN50)
		return
	}
	if np, ok := a.lookup(a.n100, c.Point, name); ok {
		a.apply(c, np, place.RankN100)
	}
}

func (a *Adjuster) lookup(idx *spatial.PointIndex[dataset.NamePoint], at geom.Coord, foldedName string) (dataset.NamePoint, bool) {
	if idx == nil {
		return dataset.NamePoint{}, false
	}
	np, _, found := idx.Nearest(at, a.maxDistM, func(p dataset.NamePoint) bool {
		return p.Rank != "" && foldName(p.Name) == foldedName
	})
	return np, found
}

func (a *Adjuster) apply(c *place.Candidate, np dataset.NamePoint, src place.RankSource) {
	c.PlaceRank = np.Rank
	c.RankSource = src
	a.Adjusted++
	zap.L().Debug("settlement rank adjusted",
		zap.String("component", "rank"),
		zap.String("stedsnummer", c.ID),
		zap.String("place", np.Rank),
		zap.String("source", src.String()),
	)
}

// foldTransformer strips combining marks after NFD decomposition, so that
// "Bodø" and "Bodo" or "Kárášjohka" and "Karasjohka" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases and strips diacritics for name comparison. Danish and
// Norwegian ø is not a combining form; fold it explicitly.
func foldName(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	r := strings.NewReplacer("ø", "o", "æ", "ae", "å", "a", "đ", "d", "ŧ", "t", "ŋ", "n")
	return r.Replace(folded)
}
