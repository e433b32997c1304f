package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLang(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "extract spelling", in: "nordsamisk", want: "sme"},
		{name: "wfs code passes through", in: "sme", want: "sme"},
		{name: "norwegian extract", in: "norsk", want: "nor"},
		{name: "kven", in: "kvensk", want: "fkv"},
		{name: "malformed falls back to norwegian", in: "klingon", want: "nor"},
		{name: "empty falls back to norwegian", in: "", want: "nor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLang(tt.in))
		})
	}
}

func TestSuffixFor(t *testing.T) {
	assert.Equal(t, "no", SuffixFor("nor"))
	assert.Equal(t, "se", SuffixFor("sme"))
	assert.Equal(t, "fkv", SuffixFor("fkv"))
	assert.Empty(t, SuffixFor("unknown"))
}

func TestPrimaryName(t *testing.T) {
	c := &Candidate{
		Resolved: []LangNames{
			{Lang: "nor", Name: "Kautokeino"},
			{Lang: "sme", Name: "Guovdageaidnu"},
		},
	}
	assert.Equal(t, "Kautokeino - Guovdageaidnu", c.PrimaryName())
	assert.True(t, c.HasPrimaryName())
	assert.True(t, c.Multilingual())
}

func TestPrimaryNameSkipsEmptyLanguages(t *testing.T) {
	c := &Candidate{
		Resolved: []LangNames{
			{Lang: "nor", Old: []string{"Gamlebyen"}},
			{Lang: "sme", Name: "Guovdageaidnu"},
		},
	}
	assert.Equal(t, "Guovdageaidnu", c.PrimaryName())
}

func TestMultilingual(t *testing.T) {
	norwegianOnly := &Candidate{Resolved: []LangNames{{Lang: "nor", Name: "Lillevik"}}}
	assert.False(t, norwegianOnly.Multilingual())

	samiOnly := &Candidate{Resolved: []LangNames{{Lang: "sme", Name: "Guovdageaidnu"}}}
	assert.True(t, samiOnly.Multilingual())
}

func TestHasPrimaryNameEmpty(t *testing.T) {
	c := &Candidate{Resolved: []LangNames{{Lang: "nor", Old: []string{"Gamleby"}}}}
	assert.False(t, c.HasPrimaryName())
	assert.Empty(t, c.PrimaryName())
}
