package packet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Charset converts string fields between UTF-8 and the wire encoding.
type Charset struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// UTF8 passes strings through unchanged.
var UTF8 = &Charset{name: "utf-8"}

// LookupCharset resolves a WHATWG encoding label such as "big5" or
// "shift_jis".
func LookupCharset(label string) (*Charset, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	if name == "utf-8" {
		return UTF8, nil
	}
	return &Charset{name: name, enc: enc}, nil
}

func (c *Charset) Name() string { return c.name }

// Decode converts wire bytes to a UTF-8 string. Pure ASCII takes the fast
// path.
func (c *Charset) Decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if c.enc == nil || isASCII(raw) {
		return string(raw)
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// Encode converts a UTF-8 string to wire bytes. Characters the charset
// cannot represent are replaced by the encoder's substitute.
func (c *Charset) Encode(s string) []byte {
	if c.enc == nil || isASCII([]byte(s)) {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
