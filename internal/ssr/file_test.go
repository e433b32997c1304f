package ssr

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmno/ssr2osm/internal/fetcher"
	"github.com/osmno/ssr2osm/internal/kommune"
)

func bergenExtractZIP(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("Basisdata_4601_Bergen_25833_Stedsnavn_GML.gml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0"?><FeatureCollection></FeatureCollection>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFileSourceRevalidatesWithETag(t *testing.T) {
	payload := bergenExtractZIP(t)

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch requests {
		case 1:
			assert.Empty(t, r.Header.Get("If-None-Match"))
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write(payload)
		default:
			assert.Equal(t, `"v1"`, r.Header.Get("If-None-Match"))
			w.WriteHeader(http.StatusNotModified)
		}
	}))
	defer srv.Close()

	registry := kommune.NewRegistry(map[string]string{"4601": "Bergen"})
	src := NewFileSource(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), registry, srv.URL, t.TempDir())

	ctx := context.Background()
	_, err := src.Records(ctx, "4601")
	require.NoError(t, err)

	// The second run revalidates the cached extract and gets a 304 back.
	_, err = src.Records(ctx, "4601")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestFileSourceKeepsCacheWhenRevalidationFails(t *testing.T) {
	payload := bergenExtractZIP(t)

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("ETag", `"v1"`)
			_, _ = w.Write(payload)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	registry := kommune.NewRegistry(map[string]string{"4601": "Bergen"})
	src := NewFileSource(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), registry, srv.URL, t.TempDir())

	ctx := context.Background()
	_, err := src.Records(ctx, "4601")
	require.NoError(t, err)

	// A failing revalidation falls back to the cached extract.
	_, err = src.Records(ctx, "4601")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, requests, 2)
}
