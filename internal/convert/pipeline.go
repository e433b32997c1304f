package convert

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/config"
	"github.com/osmno/ssr2osm/internal/dataset"
	"github.com/osmno/ssr2osm/internal/kommune"
	"github.com/osmno/ssr2osm/internal/output"
	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/rank"
	"github.com/osmno/ssr2osm/internal/relocate"
	"github.com/osmno/ssr2osm/internal/ssr"
)

// nudgeStep is the latitude increment separating coincident output points,
// so editors do not silently merge them on import.
const nudgeStep = 0.0001

// Source supplies raw registry records for one municipality or county code.
type Source interface {
	Records(ctx context.Context, code string) ([]ssr.RawRecord, error)
}

// Options selects what one conversion run covers.
type Options struct {
	// Scope is a resolved 4-digit municipality code, 2-digit county code,
	// or kommune.NorwayCode for the whole country.
	Scope string
	// TypeFilter restricts output to one SSR name type.
	TypeFilter string
	// IncludeAll keeps candidates without feature tags or a current name.
	IncludeAll bool
	// UseWFS marks output filenames from the live service.
	UseWFS bool
	// NoBuilding disables footprint relocation.
	NoBuilding bool
	// AllWaterwayPoints emits every vertex of waterway multipoints.
	AllWaterwayPoints bool
	// CountryWide processes the whole scope as one batch and one output
	// file instead of fanning out per municipality. Requires a type filter.
	CountryWide bool
}

// Pipeline runs the conversion: fetch, normalize, resolve, adjust, relocate
// and emit, one output file per scope.
type Pipeline struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	registry *kommune.Registry
	source   Source
	opts     Options
}

// NewPipeline assembles a Pipeline.
func NewPipeline(cfg *config.Config, cat *catalog.Catalog, reg *kommune.Registry, src Source, opts Options) *Pipeline {
	return &Pipeline{cfg: cfg, catalog: cat, registry: reg, source: src, opts: opts}
}

// Run converts every municipality in scope. Scope failures are isolated:
// one municipality failing does not abort the rest, and the summary names
// the failed scopes. An error is returned only when nothing succeeded.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	codes := p.scopeCodes()

	var mu sync.Mutex
	var total Summary

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Convert.Concurrency, 1))

	for _, code := range codes {
		code := code
		g.Go(func() error {
			sum, err := p.runScope(gctx, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				total.FailedScopes = append(total.FailedScopes, code)
				zap.L().Error("scope failed",
					zap.String("component", "convert"),
					zap.String("scope", code),
					zap.Error(err),
				)
				return nil
			}
			total.Merge(sum)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}

	if total.Scopes == 0 && len(total.FailedScopes) > 0 {
		return total, eris.Errorf("convert: all %d scopes failed", len(total.FailedScopes))
	}
	return total, nil
}

// scopeCodes expands the requested scope into per-municipality batches. A
// country-wide type query stays one batch; the live service filters
// server-side and the result is one file.
func (p *Pipeline) scopeCodes() []string {
	switch {
	case p.opts.CountryWide:
		return []string{p.opts.Scope}
	case p.opts.Scope == kommune.NorwayCode:
		return p.registry.Municipalities()
	case len(p.opts.Scope) == 2:
		var codes []string
		for _, m := range p.registry.Municipalities() {
			if strings.HasPrefix(m, p.opts.Scope) {
				codes = append(codes, m)
			}
		}
		return codes
	default:
		return []string{p.opts.Scope}
	}
}

func (p *Pipeline) runScope(ctx context.Context, code string) (Summary, error) {
	log := zap.L().With(
		zap.String("component", "convert"),
		zap.String("scope", code),
	)

	records, err := p.source.Records(ctx, code)
	if err != nil {
		return Summary{}, err
	}

	normalizer := NewNormalizer(p.catalog, p.cfg.Languages.Priority, p.opts.IncludeAll)
	cands := normalizer.Normalize(records)
	if p.opts.TypeFilter != "" {
		cands = filterType(cands, p.opts.TypeFilter)
	}

	Resolver{}.ResolveAll(cands)

	sum := Summary{
		Scopes:             1,
		Records:            len(records),
		SkippedUnknownType: normalizer.SkippedUnknownType,
		SkippedNoGeometry:  normalizer.SkippedNoGeometry,
		SkippedNoNames:     normalizer.SkippedNoNames,
	}
	cands = p.filterResolved(cands, &sum)

	sum.Duplicates = MarkDuplicates(cands, p.catalog)

	adjuster, relocator, err := p.loadAuxiliary(code)
	if err != nil {
		return Summary{}, err
	}
	for _, c := range cands {
		rule, _ := p.catalog.Rule(c.Type)
		adjuster.Adjust(c, rule)
		relocator.Relocate(c, rule)
	}
	sum.RankAdjusted = adjuster.Adjusted
	sum.Relocated = relocator.Relocated
	sum.RelocateFailed = relocator.Failed

	feats := p.emit(cands)
	sum.Converted = len(feats)

	path := filepath.Join(p.cfg.Convert.OutputDir, p.filename(code))
	if err := output.WriteGeoJSON(path, feats); err != nil {
		return Summary{}, err
	}

	log.Info("scope converted",
		zap.Int("records", len(records)),
		zap.Int("features", len(feats)),
		zap.String("file", path),
	)
	return sum, nil
}

// filterResolved drops candidates that resolved no current name or whose
// rule emits no feature tags, unless -all mode keeps them.
func (p *Pipeline) filterResolved(cands []*place.Candidate, sum *Summary) []*place.Candidate {
	kept := cands[:0]
	for _, c := range cands {
		if !c.HasPrimaryName() && !p.opts.IncludeAll {
			sum.SkippedNoNames++
			continue
		}
		if rule, ok := p.catalog.Rule(c.Type); ok && !rule.Tagged() && !p.opts.IncludeAll {
			sum.SkippedUntagged++
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// loadAuxiliary loads the rank and relocation datasets for one
// municipality. Country-wide batches skip them; the products are
// distributed per municipality.
func (p *Pipeline) loadAuxiliary(code string) (*rank.Adjuster, *relocate.Relocator, error) {
	if len(code) != 4 {
		return rank.NewAdjuster(nil, nil, 0), relocate.NewRelocator(nil, 0), nil
	}

	n50, err := dataset.LoadPlaceNames(p.cfg.Rank.N50Path, code)
	if err != nil {
		return nil, nil, err
	}
	n100, err := dataset.LoadPlaceNames(p.cfg.Rank.N100Path, code)
	if err != nil {
		return nil, nil, err
	}
	adjuster := rank.NewAdjuster(n50, n100, p.cfg.Rank.MaxDistanceM)

	relocator := relocate.NewRelocator(nil, 0)
	if !p.opts.NoBuilding {
		buildings, err := dataset.LoadBuildings(p.cfg.Relocate.BuildingPath, code)
		if err != nil {
			return nil, nil, err
		}
		relocator = relocate.NewRelocator(buildings, p.cfg.Relocate.MarginM)
	}
	return adjuster, relocator, nil
}

// emit builds the output features, separating coincident points.
func (p *Pipeline) emit(cands []*place.Candidate) []output.Feature {
	opts := EmitOptions{IncludeMunicipality: p.opts.CountryWide || len(p.opts.Scope) == 2}
	occupied := make(map[[2]float64]bool)

	var feats []output.Feature
	for _, c := range cands {
		rule, _ := p.catalog.Rule(c.Type)
		tags := Emit(c, rule, opts)

		feats = append(feats, output.Feature{Tags: tags, Point: nudge(c.Point, occupied)})

		if p.opts.AllWaterwayPoints && rule.Category == catalog.CategoryWaterway {
			for _, extra := range c.Extra {
				feats = append(feats, output.Feature{Tags: tags, Point: nudge(extra, occupied)})
			}
		}
	}
	return feats
}

// nudge shifts a point north in small steps until it occupies a free slot.
func nudge(c geom.Coord, occupied map[[2]float64]bool) geom.Coord {
	point := geom.Coord{c[0], c[1]}
	for occupied[[2]float64{point[0], point[1]}] {
		point[1] += nudgeStep
	}
	occupied[[2]float64{point[0], point[1]}] = true
	return point
}

func filterType(cands []*place.Candidate, typeCode string) []*place.Candidate {
	kept := cands[:0]
	for _, c := range cands {
		if c.Type == typeCode {
			kept = append(kept, c)
		}
	}
	return kept
}

// filename names the scope's output file.
func (p *Pipeline) filename(code string) string {
	name := p.registry.Name(code)
	if code == kommune.NorwayCode {
		name = "Norge"
	}
	return output.Filename(code, name, p.opts.TypeFilter, p.opts.UseWFS, p.opts.IncludeAll)
}
