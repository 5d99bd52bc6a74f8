package i18n

import (
	"reflect"
	"testing"
)

func setLocaleEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range append([]string{envVar}, localeVars...) {
		t.Setenv(key, env[key])
	}
}

func TestLangFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"--ui-lang=ru", "version"}, want: "ru"},
		{args: []string{"langs", "--ui-lang", "de"}, want: "de"},
		{args: []string{"translate", "--", "--ui-lang", "de"}, want: ""},
		{args: []string{"--ui-lang"}, want: ""},
		{args: nil, want: ""},
	}

	for _, tc := range tests {
		if got := LangFromArgs(tc.args); got != tc.want {
			t.Fatalf("LangFromArgs(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"ru_RU.UTF-8":      "ru_RU",
		"sr_RS@latin":      "sr_RS",
		"de_DE.UTF-8@euro": "de_DE",
		" pt_BR ":          "pt_BR",
		"C":                "",
		"C.UTF-8":          "",
		"POSIX":            "",
		"":                 "",
	}

	for in, want := range tests {
		if got := normalize(in); got != want {
			t.Fatalf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{
			name: "flag beats environment",
			args: []string{"--ui-lang=de", "langs"},
			env:  map[string]string{envVar: "ru", "LANG": "fr_FR.UTF-8"},
			want: "de",
		},
		{
			name: "GTRANSLATE_UI_LANG beats locale variables",
			env:  map[string]string{envVar: "ru", "LANGUAGE": "de"},
			want: "ru",
		},
		{
			name: "first entry of LANGUAGE list",
			env:  map[string]string{"LANGUAGE": "ru_RU.UTF-8:en_US", "LC_ALL": "de_DE.UTF-8"},
			want: "ru_RU",
		},
		{
			name: "C and POSIX fall through",
			env:  map[string]string{"LANGUAGE": "C", "LC_ALL": "POSIX", "LC_MESSAGES": "fr_FR.UTF-8"},
			want: "fr_FR",
		},
		{
			name: "C flag value falls through to environment",
			args: []string{"--ui-lang", "C"},
			env:  map[string]string{"LANG": "de_DE.UTF-8"},
			want: "de_DE",
		},
		{
			name: "nothing set",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setLocaleEnv(t, tc.env)
			if got := Resolve(tc.args); got != tc.want {
				t.Fatalf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAvailableAndHasCatalog(t *testing.T) {
	if got, want := Available(), []string{"de", "en", "ru"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}

	for lang, want := range map[string]bool{
		"de":          true,
		"de_AT":       true,
		"ru-RU":       true,
		"ru_RU.UTF-8": true,
		"en_GB":       true,
		"fr":          false,
		"":            false,
	} {
		if got := HasCatalog(lang); got != want {
			t.Fatalf("HasCatalog(%q) = %v, want %v", lang, got, want)
		}
	}
}

func TestInitLoadsCatalog(t *testing.T) {
	oldPo, oldActive := po, active
	t.Cleanup(func() { po, active = oldPo, oldActive })

	setLocaleEnv(t, nil)
	if got := Init([]string{"--ui-lang=de.UTF-8", "version"}); got != "de" {
		t.Fatalf("Init() = %q, want de", got)
	}
	if Lang() != "de" {
		t.Fatalf("Lang() = %q", Lang())
	}
	if got := T("Show version information"); got != "Versionsinformationen anzeigen" {
		t.Fatalf("T() = %q", got)
	}
}

func TestCatalogs(t *testing.T) {
	oldPo, oldActive := po, active
	t.Cleanup(func() { po, active = oldPo, oldActive })

	t.Run("german plural", func(t *testing.T) {
		load("de")
		if got := N("%d language", "%d languages", 2); got != "%d Sprachen" {
			t.Fatalf("N(2) = %q", got)
		}
	})

	t.Run("russian plural forms", func(t *testing.T) {
		load("ru")
		for n, want := range map[int]string{1: "%d язык", 3: "%d языка", 5: "%d языков", 21: "%d язык"} {
			if got := N("%d language", "%d languages", n); got != want {
				t.Fatalf("N(%d) = %q, want %q", n, got, want)
			}
		}
	})

	t.Run("missing message passes through", func(t *testing.T) {
		load("de")
		if got := T("not in any catalog"); got != "not in any catalog" {
			t.Fatalf("T() = %q", got)
		}
	})

	t.Run("language without catalog", func(t *testing.T) {
		load("xx")
		if got := T("Show version information"); got != "Show version information" {
			t.Fatalf("T() = %q", got)
		}
	})

	t.Run("uninitialized", func(t *testing.T) {
		po = nil
		if got := T("Hello"); got != "Hello" {
			t.Fatalf("T() = %q", got)
		}
		if got := N("file", "files", 1); got != "file" {
			t.Fatalf("N(1) = %q", got)
		}
		if got := N("file", "files", 2); got != "files" {
			t.Fatalf("N(2) = %q", got)
		}
	})
}
