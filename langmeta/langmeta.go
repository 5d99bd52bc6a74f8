// Package langmeta provides display metadata (native and English names,
// emoji flags) for the language codes the translation service uses.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Native  string `json:"native" yaml:"native"`
	English string `json:"english" yaml:"english"`
	Flag    string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// aliases maps the service's legacy or pseudo codes to BCP 47 tags.
// An empty value marks a code with no language behind it.
var aliases = map[string]string{
	"auto":  "",
	"iw":    "he",
	"jw":    "jv",
	"zh-CN": "zh-Hans-CN",
	"zh-TW": "zh-Hant-TW",
}

var englishNames = display.English.Tags()

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a language code such as "de",
// "pt_BR" or "zh-CN". Unknown codes come back with the code as both names
// and no flag.
func Resolve(code string) Meta {
	unknown := Meta{Native: code, English: code}

	normalized := canonicalize(code)
	if alias, ok := aliases[normalized]; ok {
		if alias == "" {
			return unknown
		}
		normalized = alias
	}

	tag, err := language.Parse(normalized)
	if err != nil {
		return unknown
	}

	m := Meta{
		Native:  display.Self.Name(tag),
		English: englishNames.Name(tag),
	}
	if m.Native == "" {
		m.Native = code
	}
	if m.English == "" {
		m.English = code
	}
	if region, conf := tag.Region(); conf != language.No && region.IsCountry() {
		m.Flag = flagFromRegion(region.String())
	}
	return m
}

// flagFromRegion turns a two-letter region code into its regional indicator
// pair, or returns "" for anything else.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
