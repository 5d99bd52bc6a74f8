package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Translation is a decoded translate response: a positional JSON array whose
// layout depends on the dt flags requested.
type Translation struct {
	// Raw is the response after RepairJSON.
	Raw json.RawMessage
	// Data is Raw decoded into generic values.
	Data []any
}

// ParseTranslation repairs and decodes a translate response body. An empty
// body or empty array yields ErrUpstreamUnavailable.
func ParseTranslation(body []byte) (*Translation, error) {
	repaired := RepairJSON(string(body))
	if strings.TrimSpace(repaired) == "" {
		return nil, ErrUpstreamUnavailable
	}

	var data []any
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		return nil, fmt.Errorf("decoding translate response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrUpstreamUnavailable
	}
	return &Translation{Raw: json.RawMessage(repaired), Data: data}, nil
}

// Text joins the translated segments.
func (t *Translation) Text() string {
	return t.joinSegments(0)
}

// Original joins the source segments as echoed back by the service.
func (t *Translation) Original() string {
	return t.joinSegments(1)
}

// Romanization returns the transliteration of the translated text, if the
// service included one.
func (t *Translation) Romanization() string {
	var out string
	gjson.GetBytes(t.Raw, "0").ForEach(func(_, seg gjson.Result) bool {
		if seg.Get("0").String() == "" && seg.Get("2").String() != "" {
			out = seg.Get("2").String()
			return false
		}
		return true
	})
	return out
}

// SourceLanguage returns the source language the service detected or
// echoed back.
func (t *Translation) SourceLanguage() string {
	return gjson.GetBytes(t.Raw, "2").String()
}

func (t *Translation) joinSegments(field int) string {
	var b strings.Builder
	path := fmt.Sprint(field)
	gjson.GetBytes(t.Raw, "0").ForEach(func(_, seg gjson.Result) bool {
		if v := seg.Get(path); v.Type == gjson.String {
			b.WriteString(v.Str)
		}
		return true
	})
	return b.String()
}

// RepairJSON rewrites the empty array slots the translate endpoint emits as
// empty strings so the body parses as standard JSON: "[," and ",," gain a ""
// element. A trailing comma before "]" is an elision, as in JavaScript, and
// is dropped. Commas inside string literals are left alone.
func RepairJSON(s string) string {
	out := make([]byte, 0, len(s)+len(s)/8)

	inString, escaped := false, false
	var prev byte // last non-space byte outside a string
	lastComma := -1
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
				prev = '"'
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case ',':
			if prev == '[' || prev == ',' {
				out = append(out, '"', '"')
			}
			lastComma = len(out)
		case ']':
			if prev == ',' {
				out = append(out[:lastComma], out[lastComma+1:]...)
			}
		}
		out = append(out, ch)
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			prev = ch
		}
	}
	return string(out)
}
