// Package langlist scrapes the supported source and target languages from
// the translation service's landing page.
//
// The extractor is not an HTML parser. The page carries two <select> lists of
// <option> elements and only those are pattern-matched; anything that does
// not fit the expected shape is skipped.
package langlist

import (
	"regexp"
	"strings"
)

// Language is a language the service accepts.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

var (
	selectOpenRe  = regexp.MustCompile(`(?is)<select\b([^>]*)>`)
	selectCloseRe = regexp.MustCompile(`(?i)</select\s*>`)

	// attrRe matches name=value pairs where the value is double-quoted,
	// single-quoted or bare.
	attrRe = regexp.MustCompile(`(?is)([a-z][a-z0-9_:-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)

	selectedRe = regexp.MustCompile(`(?i)selected`)
	spaceRunRe = regexp.MustCompile(`\s{2,}`)

	quotedOptionRe   = regexp.MustCompile(`<option(\s*)value="([a-zA-Z-]*)"\s*>([a-zA-Z()\s]*)</option>`)
	unquotedOptionRe = regexp.MustCompile(`<option(\s*)value=([a-zA-Z-]*)\s*>([a-zA-Z()\s]*)</option>`)
)

// Select identities of the two lists on the landing page.
const (
	fromID, fromName = "gt-sl", "sl"
	toID, toName     = "gt-tl", "tl"
)

// Extract returns the "from" and "to" language lists found in page, in
// document order. Missing lists come back empty; a page whose layout has
// drifted yields two empty slices rather than an error.
func Extract(page string) (from, to []Language) {
	from = []Language{}
	to = []Language{}
	if block, ok := selectBlock(page, fromID, fromName); ok {
		from = scanOptions(block)
	}
	if block, ok := selectBlock(page, toID, toName); ok {
		to = scanOptions(block)
	}
	return from, to
}

// selectBlock returns the inner text of the first <select> identified by id
// and name that holds at least one <option>. The block ends at the first
// </select> after the opening tag.
func selectBlock(page, id, name string) (string, bool) {
	for _, loc := range selectOpenRe.FindAllStringSubmatchIndex(page, -1) {
		if !languageSelect(page[loc[2]:loc[3]], id, name) {
			continue
		}
		rest := page[loc[1]:]
		end := selectCloseRe.FindStringIndex(rest)
		if end == nil {
			continue
		}
		inner := rest[:end[0]]
		if strings.Contains(inner, "<option") {
			return inner, true
		}
	}
	return "", false
}

// languageSelect reports whether the attribute string of a <select> tag
// carries the given id and name, some class and tabindex="0", in any order.
func languageSelect(attrs, id, name string) bool {
	seen := make(map[string]string, 4)
	for _, m := range attrRe.FindAllStringSubmatch(attrs, -1) {
		seen[strings.ToLower(m[1])] = strings.TrimSpace(m[2] + m[3] + m[4])
	}
	if _, ok := seen["class"]; !ok {
		return false
	}
	return seen["id"] == id && seen["name"] == name && seen["tabindex"] == "0"
}

func scanOptions(block string) []Language {
	text := selectedRe.ReplaceAllString(block, "")
	text = spaceRunRe.ReplaceAllString(text, " ")

	matches := quotedOptionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		matches = unquotedOptionRe.FindAllStringSubmatch(text, -1)
	}

	langs := make([]Language, 0, len(matches))
	for _, m := range matches {
		langs = append(langs, Language{Code: m[2], Name: strings.TrimSpace(m[3])})
	}
	return langs
}
