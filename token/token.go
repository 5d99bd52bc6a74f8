// Package token computes the "tk" request signature expected by the web
// translation endpoints.
//
// The signature is derived from the request text and an hour-granular seed.
// Every step must match the service's own client-side derivation bit for bit:
// a request carrying a different value is rejected.
package token

import (
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/minios-linux/gtranslate/bit32"
)

// Scramble patterns applied per byte and once at the end.
const (
	byteRound  = "+-a^+6"
	finalRound = "+-3^+b+-f"
)

// Seed returns the number of whole hours elapsed since the Unix epoch, in UTC.
func Seed(t time.Time) uint32 {
	return uint32(t.UTC().Unix() / 3600)
}

// Sign returns the signature for text in the given hour bucket.
// It never fails; an empty text still yields a value.
func Sign(text string, seed uint32) string {
	return SignUnits(utf16.Encode([]rune(text)), seed)
}

// SignUnits signs text given as raw UTF-16 code units. Unlike Sign it can
// represent unpaired surrogates.
func SignUnits(units []uint16, seed uint32) string {
	a := int64(seed)
	for _, v := range expand(units) {
		a = scramble(a+int64(v), byteRound)
	}
	a = scramble(a, finalRound)

	if a < 0 {
		a = (a & 0x7FFFFFFF) + 0x80000000
	}
	a %= 1_000_000

	return strconv.FormatInt(a, 10) + "." + strconv.FormatInt(a^int64(seed), 10)
}

// expand re-encodes UTF-16 code units into UTF-8 shaped byte values.
// A high surrogate directly followed by a low surrogate is combined and
// consumes both units; any other unit at or above 0x800, lone surrogates
// included, takes the three-byte form.
func expand(units []uint16) []int {
	out := make([]int, 0, len(units)*3)
	for i := 0; i < len(units); i++ {
		g := int(units[i])
		switch {
		case g < 0x80:
			out = append(out, g)
			continue
		case g < 0x800:
			out = append(out, g>>6|0xC0)
		case g&0xFC00 == 0xD800 && i+1 < len(units) && units[i+1]&0xFC00 == 0xDC00:
			i++
			g = 0x10000 + (g&0x3FF)<<10 + int(units[i])&0x3FF
			out = append(out, g>>18|0xF0, g>>12&0x3F|0x80, g>>6&0x3F|0x80)
		default:
			out = append(out, g>>12|0xE0, g>>6&0x3F|0x80)
		}
		out = append(out, g&0x3F|0x80)
	}
	return out
}

// scramble applies pattern to a. The pattern is read in triplets
// (op, shift direction, amount): '+' as op adds modulo 2^32, anything else
// XORs; '+' as direction is a logical right shift, anything else a left
// shift without wraparound. Amounts are a digit or a letter counting from
// 'a' = 10.
func scramble(a int64, pattern string) int64 {
	for c := 0; c+2 < len(pattern); c += 3 {
		d := shiftAmount(pattern[c+2])

		var v int64
		if pattern[c+1] == '+' {
			v = int64(bit32.ShiftRight(a, d))
		} else {
			v = a << uint(d)
		}

		if pattern[c] == '+' {
			a = int64(bit32.Mask(a + v))
		} else {
			a ^= v
		}
	}
	return a
}

func shiftAmount(ch byte) int {
	switch {
	case ch >= 'a':
		return int(ch) - 87
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	}
	return 0
}

// Signer signs texts against the current hour bucket.
type Signer struct {
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// NewSigner returns a Signer reading the system clock.
func NewSigner() *Signer {
	return &Signer{Now: time.Now}
}

// Seed returns the hour bucket for the signer's clock.
func (s *Signer) Seed() uint32 {
	now := time.Now
	if s != nil && s.Now != nil {
		now = s.Now
	}
	return Seed(now())
}

// Sign returns the seed in effect and the signature of text under it.
func (s *Signer) Sign(text string) (uint32, string) {
	seed := s.Seed()
	return seed, Sign(text, seed)
}
