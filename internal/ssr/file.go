package ssr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/fetcher"
	"github.com/osmno/ssr2osm/internal/kommune"
)

// FileSource loads registry records from Geonorge Basisdata GML ZIP
// extracts, downloaded and cached per municipality.
type FileSource struct {
	fetcher  *fetcher.HTTPFetcher
	registry *kommune.Registry
	baseURL  string
	cacheDir string
}

// NewFileSource creates a FileSource caching downloads under cacheDir.
func NewFileSource(f *fetcher.HTTPFetcher, registry *kommune.Registry, baseURL, cacheDir string) *FileSource {
	return &FileSource{fetcher: f, registry: registry, baseURL: baseURL, cacheDir: cacheDir}
}

// Records fetches and parses the extract for one municipality or county
// code. Failure aborts this scope only.
func (s *FileSource) Records(ctx context.Context, code string) ([]RawRecord, error) {
	name := s.registry.Name(code)
	if name == "" {
		return nil, eris.Errorf("ssr: unknown municipality code %q", code)
	}

	base := kommune.CleanFilename(fmt.Sprintf("Basisdata_%s_%s_25833_Stedsnavn_GML", code, name))
	log := zap.L().With(
		zap.String("component", "ssr.file"),
		zap.String("municipality", code),
		zap.String("file", base),
	)

	gmlPath, err := s.ensureExtract(ctx, base)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(gmlPath)
	if err != nil {
		return nil, eris.Wrapf(err, "ssr: open %s", gmlPath)
	}
	defer f.Close() //nolint:errcheck

	var records []RawRecord
	err = fetcher.StreamXML(ctx, f, "Sted", func(sted gmlSted) error {
		records = append(records, sted.toRecord())
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ssr: parse %s", base)
	}

	log.Debug("extract parsed", zap.Int("records", len(records)))
	return records, nil
}

// ensureExtract downloads and unpacks the municipality ZIP, revalidating a
// cached extract against the service ETag stored next to it. A cached copy
// without a stored validator is trusted as-is.
func (s *FileSource) ensureExtract(ctx context.Context, base string) (string, error) {
	destDir := filepath.Join(s.cacheDir, base)
	gmlPath := filepath.Join(destDir, base+".gml")
	etagPath := filepath.Join(destDir, base+".etag")

	cached := false
	if info, err := os.Stat(gmlPath); err == nil && info.Size() > 0 {
		cached = true
	}
	var etag string
	if cached {
		data, err := os.ReadFile(etagPath)
		if err != nil {
			return gmlPath, nil
		}
		etag = strings.TrimSpace(string(data))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "ssr: create cache dir")
	}

	url := fmt.Sprintf("%s/%s.zip", s.baseURL, base)
	body, newTag, changed, err := s.fetcher.DownloadIfChanged(ctx, url, etag)
	if err != nil {
		if cached {
			zap.L().Warn("extract revalidation failed, using cached copy",
				zap.String("component", "ssr.file"),
				zap.String("file", base),
				zap.Error(err),
			)
			return gmlPath, nil
		}
		return "", eris.Wrapf(err, "ssr: download extract %s", base)
	}
	if !changed {
		return gmlPath, nil
	}
	defer body.Close() //nolint:errcheck

	zipPath := filepath.Join(destDir, base+".zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "ssr: create cache file")
	}
	if _, err := io.Copy(zf, body); err != nil {
		_ = zf.Close()
		return "", eris.Wrapf(err, "ssr: download extract %s", base)
	}
	if err := zf.Close(); err != nil {
		return "", eris.Wrapf(err, "ssr: write cache file %s", base)
	}

	extracted, err := fetcher.ExtractZIP(zipPath, destDir)
	if err != nil {
		return "", eris.Wrapf(err, "ssr: extract %s", base)
	}

	path, err := fetcher.FindByExt(extracted, ".gml")
	if err != nil {
		return "", eris.Wrapf(err, "ssr: extract %s", base)
	}

	// Extracted GML may carry a different casing than the request name.
	if path != gmlPath {
		if err := os.Rename(path, gmlPath); err != nil {
			return path, nil //nolint:nilerr // fall back to the extracted path
		}
	}
	if newTag != "" {
		_ = os.WriteFile(etagPath, []byte(newTag), 0o644)
	}
	return gmlPath, nil
}
