// Package i18n translates gtranslate's own command-line messages.
//
// Catalogs are gettext PO files embedded from
// locales/{lang}/LC_MESSAGES/gtranslate.po and read with gotext. The UI
// language is picked once at startup, before cobra parses the command line,
// so that help text is already translated:
//
//	lang := i18n.Init(os.Args[1:])
//	fmt.Println(i18n.T("Show version information"))
//	fmt.Printf(i18n.N("%d language", "%d languages", n), n)
//
// Messages are written in English; an unknown language falls back to them.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const (
	domain     = "gtranslate"
	flagName   = "--ui-lang"
	envVar     = "GTRANSLATE_UI_LANG"
	sourceLang = "en"
)

// localeVars are consulted after --ui-lang and GTRANSLATE_UI_LANG, in GNU
// gettext priority order.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

var (
	po     *gotext.Locale
	active = sourceLang
)

// Init resolves the UI language from the raw command-line arguments and the
// environment, loads its catalog and returns it.
func Init(args []string) string {
	lang := Resolve(args)
	load(lang)
	return lang
}

func load(lang string) {
	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	active = lang
}

// Lang returns the language selected by the last Init.
func Lang() string {
	return active
}

// Resolve picks the UI language: --ui-lang in args, then GTRANSLATE_UI_LANG,
// then LANGUAGE, LC_ALL, LC_MESSAGES and LANG. The C and POSIX locales mean
// "untranslated" and are skipped.
func Resolve(args []string) string {
	if lang := normalize(LangFromArgs(args)); lang != "" {
		return lang
	}
	if lang := normalize(os.Getenv(envVar)); lang != "" {
		return lang
	}
	for _, env := range localeVars {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			// colon-separated preference list
			val, _, _ = strings.Cut(val, ":")
		}
		if lang := normalize(val); lang != "" {
			return lang
		}
	}
	return sourceLang
}

// LangFromArgs returns the value of --ui-lang from raw arguments, in either
// the "--ui-lang=xx" or the "--ui-lang xx" form. Arguments after "--" are
// not inspected.
func LangFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, flagName+"="); ok {
			return v
		}
		if arg == flagName && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// normalize strips the encoding and modifier from a locale value
// ("ru_RU.UTF-8@latin" -> "ru_RU") and maps C and POSIX to "".
func normalize(val string) string {
	val = strings.TrimSpace(val)
	if i := strings.IndexAny(val, ".@"); i >= 0 {
		val = val[:i]
	}
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}

// Available lists the languages with an embedded catalog plus the source
// language, sorted.
func Available() []string {
	langs := []string{sourceLang}
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return langs
	}
	for _, e := range entries {
		if e.IsDir() && HasCatalog(e.Name()) {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// HasCatalog reports whether messages exist for lang, either in a catalog
// for the full locale or for its base language. English always has them.
func HasCatalog(lang string) bool {
	lang = normalize(lang)
	base, _, _ := strings.Cut(strings.ReplaceAll(lang, "-", "_"), "_")
	if base == sourceLang {
		return true
	}
	for _, l := range []string{lang, base} {
		if l == "" {
			continue
		}
		if _, err := fs.Stat(locales, path.Join("locales", l, "LC_MESSAGES", domain+".po")); err == nil {
			return true
		}
	}
	return false
}

// T translates msgid, or returns it unchanged when no translation exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms chosen by n under the target
// language's plural rule.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}
