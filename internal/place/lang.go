package place

// ssrLanguages maps SSR language identifiers to OSM name:* suffix codes.
// Extracts spell languages out ("norsk"), the WFS uses ISO 639-3 ("nor").
var ssrLanguages = map[string]string{
	// Used in GML extracts
	"norsk":        "no",
	"nordsamisk":   "se",
	"lulesamisk":   "smj",
	"sørsamisk":    "sma",
	"skoltesamisk": "sms",
	"kvensk":       "fkv",
	"engelsk":      "en",
	"svensk":       "sv",
	"russisk":      "ru",

	// Used in WFS
	"nor": "no",
	"sme": "se",
	"smj": "smj",
	"sma": "sma",
	"sms": "sms",
	"fkv": "fkv",
	"eng": "en",
	"swe": "sv",
	"rus": "ru",
	"fin": "fi",
	"dan": "da",
	"kal": "kl",
	"isl": "is",
	"deu": "de",
	"gle": "ga",
	"fra": "fr",
	"nld": "nl",
}

// wfsCodes folds the GML extract spellings onto the WFS ISO codes so both
// sources produce the same canonical language identifiers.
var wfsCodes = map[string]string{
	"norsk":        "nor",
	"nordsamisk":   "sme",
	"lulesamisk":   "smj",
	"sørsamisk":    "sma",
	"skoltesamisk": "sms",
	"kvensk":       "fkv",
	"engelsk":      "eng",
	"svensk":       "swe",
	"russisk":      "rus",
}

// NormalizeLang returns the canonical SSR language code for either source's
// spelling. Unknown codes fall back to Norwegian: the registry's majority
// language (malformed language codes are non-fatal per the conversion
// rules).
func NormalizeLang(code string) string {
	if c, ok := wfsCodes[code]; ok {
		return c
	}
	if _, ok := ssrLanguages[code]; ok {
		return code
	}
	return "nor"
}

// SuffixFor returns the OSM name:* suffix for a canonical SSR language
// code, or empty if unknown.
func SuffixFor(code string) string {
	return ssrLanguages[code]
}

// IsNorwegian reports whether the canonical code is the majority language.
func IsNorwegian(code string) bool {
	return code == "nor"
}
