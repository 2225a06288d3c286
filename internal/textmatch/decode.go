package textmatch

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// candidate is one entry of the decode chain.
type candidate struct {
	name   string
	decode func([]byte) (string, bool)
}

// knownEncodings maps the common spellings to their encodings. Names not
// listed here are resolved through the IANA registry.
var knownEncodings = map[string]encoding.Encoding{
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp866":        charmap.CodePage866,
	"ibm866":       charmap.CodePage866,
	"koi8-r":       charmap.KOI8R,
}

// newCandidate resolves name into a decode step.
func newCandidate(name string) (candidate, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "utf-8", "utf8":
		return candidate{name: key, decode: decodeUTF8}, nil
	case "utf-16", "utf16":
		return candidate{name: key, decode: decodeUTF16}, nil
	}

	enc, ok := knownEncodings[key]
	if !ok {
		var err error
		enc, err = ianaindex.IANA.Encoding(key)
		if err != nil || enc == nil {
			return candidate{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
	}
	return candidate{name: key, decode: func(data []byte) (string, bool) {
		return decodeSingleByte(enc, data)
	}}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeUTF8 accepts valid UTF-8 only. A leading byte order mark is dropped.
func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), true
}

// decodeUTF16 accepts UTF-16 starting with a byte order mark.
func decodeUTF16(data []byte) (string, bool) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// decodeSingleByte accepts data when every byte maps to a character.
func decodeSingleByte(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// decodeLossy interprets data as UTF-8 and drops invalid sequences.
func decodeLossy(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError || size > 1 {
			b.WriteRune(r)
		}
		data = data[size:]
	}
	return b.String()
}

// decodeWith runs the chain and returns the text and the encoding that
// accepted it. The empty name means the lossy fallback was used.
func decodeWith(chain []candidate, data []byte) (string, string) {
	for _, c := range chain {
		if text, ok := c.decode(data); ok {
			return text, c.name
		}
	}
	return decodeLossy(data), ""
}
