package token

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf16"
)

// Reference signatures computed independently with arbitrary-precision
// integers for fixed hour buckets.
var golden = []struct {
	text string
	seed uint32
	want string
}{
	{text: "hi", seed: 100000, want: "69163.34955"},
	{text: "", seed: 100000, want: "418007.517751"},
	{text: "hi", seed: 472103, want: "673931.883884"},
	{text: "hello world", seed: 490000, want: "733904.805056"},
	{text: "é", seed: 100000, want: "595443.562003"},
	{text: "Привет", seed: 490000, want: "694809.909321"},
	{text: "日本語", seed: 100000, want: "401975.500887"},
	{text: "😀", seed: 490000, want: "67046.425974"},
	{text: "a😀b", seed: 100000, want: "904243.805523"},
}

func TestSignGolden(t *testing.T) {
	for _, tc := range golden {
		if got := Sign(tc.text, tc.seed); got != tc.want {
			t.Fatalf("Sign(%q, %d) = %q, want %q", tc.text, tc.seed, got, tc.want)
		}
	}
}

func TestSignDeterministic(t *testing.T) {
	for _, text := range []string{"a", "hi", "The quick brown fox", "1234567890"} {
		first := Sign(text, 480123)
		for i := 0; i < 5; i++ {
			if got := Sign(text, 480123); got != first {
				t.Fatalf("Sign(%q) not deterministic: %q then %q", text, first, got)
			}
		}
	}
}

func TestSignShape(t *testing.T) {
	shape := regexp.MustCompile(`^(\d+)\.(\d+)$`)
	seeds := []uint32{0, 1, 100000, 497845, 1<<31 + 17, 0xFFFFFFFF}
	texts := []string{"", "x", "hello", "Grüße", "𝄞 clef", strings.Repeat("long text ", 200)}

	for _, seed := range seeds {
		for _, text := range texts {
			sig := Sign(text, seed)
			m := shape.FindStringSubmatch(sig)
			if m == nil {
				t.Fatalf("Sign(%q, %d) = %q, want <digits>.<digits>", text, seed, sig)
			}
			a, _ := strconv.ParseInt(m[1], 10, 64)
			b, _ := strconv.ParseInt(m[2], 10, 64)
			if a < 0 || a >= 1_000_000 {
				t.Fatalf("Sign(%q, %d): first part %d out of range", text, seed, a)
			}
			if b != a^int64(seed) {
				t.Fatalf("Sign(%q, %d): second part %d, want %d", text, seed, b, a^int64(seed))
			}
		}
	}
}

func TestSignUnitsLoneSurrogate(t *testing.T) {
	// A high surrogate followed by a non-surrogate is encoded on its own.
	if got, want := SignUnits([]uint16{0xD800, 'A'}, 100000), "946686.1046366"; got != want {
		t.Fatalf("SignUnits(lone high surrogate) = %q, want %q", got, want)
	}
	// A trailing high surrogate has nothing to pair with.
	if got := SignUnits([]uint16{'a', 0xDBFF}, 100000); got == "" {
		t.Fatal("SignUnits with trailing surrogate returned empty signature")
	}
}

func TestExpandMatchesUTF8(t *testing.T) {
	for _, text := range []string{"hi", "é", "Привет", "日本語", "😀", "a😀b", "mixed ✓ 𝄞 ß"} {
		got := expand(utf16.Encode([]rune(text)))
		want := make([]int, 0, len(text))
		for _, b := range []byte(text) {
			want = append(want, int(b))
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expand(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestExpandSurrogatePairConsumesTwoUnits(t *testing.T) {
	units := utf16.Encode([]rune("😀"))
	if len(units) != 2 {
		t.Fatalf("expected a surrogate pair, got %d units", len(units))
	}
	got := expand(units)
	want := []int{240, 159, 152, 128}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expand(U+1F600) = %v, want %v", got, want)
	}
}

func TestExpandLoneSurrogates(t *testing.T) {
	cases := []struct {
		units []uint16
		want  []int
	}{
		{units: []uint16{0xD800, 0x41}, want: []int{237, 160, 128, 65}},
		{units: []uint16{0xDC00}, want: []int{237, 176, 128}},
		{units: []uint16{0xD83D}, want: []int{237, 160, 189}},
	}

	for _, tc := range cases {
		if got := expand(tc.units); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("expand(%#v) = %v, want %v", tc.units, got, tc.want)
		}
	}
}

func TestScramble(t *testing.T) {
	if got, want := scramble(100000+'h', byteRound), int64(101044628); got != want {
		t.Fatalf("scramble = %d, want %d", got, want)
	}
	if got := scramble(12345, ""); got != 12345 {
		t.Fatalf("empty pattern changed value: %d", got)
	}
	// A dangling partial triplet is ignored.
	if got := scramble(12345, "+-"); got != 12345 {
		t.Fatalf("partial pattern changed value: %d", got)
	}
}

func TestShiftAmount(t *testing.T) {
	cases := map[byte]int{'0': 0, '3': 3, '6': 6, 'a': 10, 'b': 11, 'f': 15}
	for ch, want := range cases {
		if got := shiftAmount(ch); got != want {
			t.Fatalf("shiftAmount(%q) = %d, want %d", ch, got, want)
		}
	}
}

func TestSeed(t *testing.T) {
	at := time.Date(2026, 10, 17, 13, 45, 0, 0, time.UTC)
	if got := Seed(at); got != 497845 {
		t.Fatalf("Seed(%v) = %d, want 497845", at, got)
	}

	// The same instant in another zone lands in the same bucket.
	zone := time.FixedZone("UTC+5:30", 5*3600+1800)
	if got := Seed(at.In(zone)); got != 497845 {
		t.Fatalf("Seed in %s = %d, want 497845", zone, got)
	}

	if got := Seed(time.Unix(0, 0)); got != 0 {
		t.Fatalf("Seed(epoch) = %d, want 0", got)
	}
}

func TestSignerStableWithinHour(t *testing.T) {
	base := time.Date(2026, 10, 17, 13, 0, 0, 0, time.UTC)
	now := base
	s := &Signer{Now: func() time.Time { return now }}

	seed1, sig1 := s.Sign("hello")
	now = base.Add(59*time.Minute + 59*time.Second)
	seed2, sig2 := s.Sign("hello")
	if seed1 != seed2 || sig1 != sig2 {
		t.Fatalf("signature changed inside one hour: %d/%s vs %d/%s", seed1, sig1, seed2, sig2)
	}

	now = base.Add(time.Hour)
	seed3, _ := s.Sign("hello")
	if seed3 != seed1+1 {
		t.Fatalf("seed after one hour = %d, want %d", seed3, seed1+1)
	}
}

func TestSignerPinnedSeed(t *testing.T) {
	s := &Signer{Now: func() time.Time { return time.Unix(100000*3600+42, 0) }}
	seed, sig := s.Sign("hi")
	if seed != 100000 {
		t.Fatalf("seed = %d, want 100000", seed)
	}
	if sig != "69163.34955" {
		t.Fatalf("sig = %q, want %q", sig, "69163.34955")
	}
}

func TestNilSignerUsesSystemClock(t *testing.T) {
	var s *Signer
	want := Seed(time.Now())
	if got := s.Seed(); got != want && got != want+1 {
		t.Fatalf("nil Signer seed = %d, want about %d", got, want)
	}
	if NewSigner().Now == nil {
		t.Fatal("NewSigner should set a clock")
	}
}
