// Package kommune resolves municipality and county scopes against the
// Geonorge kommuneinfo registry.
package kommune

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/osmno/ssr2osm/internal/fetcher"
)

// NorwayCode is the pseudo-code for country-wide scope.
const NorwayCode = "00"

// SvalbardCode exists in the WFS service only, not in the file extracts.
const SvalbardCode = "2100"

// Registry maps municipality (4-digit) and county (2-digit) codes to names.
type Registry struct {
	names map[string]string
}

type kommuneinfoCounty struct {
	Number         string `json:"fylkesnummer"`
	Name           string `json:"fylkesnavn"`
	Municipalities []struct {
		Number string `json:"kommunenummer"`
		Name   string `json:"kommunenavnNorsk"`
	} `json:"kommuner"`
}

// LoadRegistry fetches the kommuneinfo registry. includeSvalbard adds the
// Svalbard pseudo-municipality, which only the WFS source can serve.
func LoadRegistry(ctx context.Context, f *fetcher.HTTPFetcher, url string, includeSvalbard bool) (*Registry, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "kommune: fetch kommuneinfo")
	}
	defer body.Close() //nolint:errcheck

	counties, err := fetcher.DecodeJSON[[]kommuneinfoCounty](body)
	if err != nil {
		return nil, eris.Wrap(err, "kommune: decode kommuneinfo")
	}

	names := map[string]string{NorwayCode: "Norge"}
	for _, county := range *counties {
		names[county.Number] = county.Name
		for _, mun := range county.Municipalities {
			names[mun.Number] = mun.Name
		}
	}
	if includeSvalbard {
		names[SvalbardCode] = "Svalbard"
	}

	return &Registry{names: names}, nil
}

// NewRegistry builds a registry from a fixed code→name map (tests, offline).
func NewRegistry(names map[string]string) *Registry {
	copied := make(map[string]string, len(names)+1)
	copied[NorwayCode] = "Norge"
	for k, v := range names {
		copied[k] = v
	}
	return &Registry{names: copied}
}

// Name returns the registered name for a code, or empty if unknown.
func (r *Registry) Name(code string) string {
	return r.names[code]
}

// Has reports whether the code is registered.
func (r *Registry) Has(code string) bool {
	_, ok := r.names[code]
	return ok
}

// Resolve maps user input (code, exact name, or unique substring) to a
// registered code.
func (r *Registry) Resolve(param string) (string, error) {
	if isDigits(param) {
		if !r.Has(param) {
			return "", eris.Errorf("kommune: code %q not found", param)
		}
		return param, nil
	}

	lower := strings.ToLower(param)
	var partial string
	ambiguous := false
	for code, name := range r.names {
		nameLower := strings.ToLower(name)
		if lower == nameLower {
			return code, nil
		}
		if strings.Contains(nameLower, lower) {
			if partial != "" {
				ambiguous = true
			} else {
				partial = code
			}
		}
	}

	if partial != "" && !ambiguous {
		return partial, nil
	}
	if ambiguous {
		return "", eris.Errorf("kommune: %q matches several municipalities", param)
	}
	return "", eris.Errorf("kommune: municipality or county %q not found", param)
}

// Municipalities returns all 4-digit codes, sorted.
func (r *Registry) Municipalities() []string {
	var out []string
	for code := range r.names {
		if len(code) == 4 {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CleanFilename converts a name to the Kartverket download filename
// spelling (ASCII-folded Norwegian letters, underscores for spaces).
func CleanFilename(name string) string {
	replacer := strings.NewReplacer(
		"Æ", "E", "Ø", "O", "Å", "A",
		"æ", "e", "ø", "o", "å", "a",
		" ", "_",
	)
	return replacer.Replace(name)
}
