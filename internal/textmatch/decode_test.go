package textmatch

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func mustChain(t *testing.T, names ...string) []candidate {
	t.Helper()
	chain := make([]candidate, 0, len(names))
	for _, n := range names {
		c, err := newCandidate(n)
		if err != nil {
			t.Fatalf("newCandidate(%q): %v", n, err)
		}
		chain = append(chain, c)
	}
	return chain
}

// TestDecodeChain tests the order in which encodings are tried.
func TestDecodeChain(t *testing.T) {
	t.Parallel()

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("héllo"))
	if err != nil {
		t.Fatal(err)
	}
	cp1251, err := charmap.Windows1251.NewEncoder().Bytes([]byte("привет"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		chain    []string
		data     []byte
		wantText string
		wantEnc  string
	}{
		{name: "utf-8 first", chain: []string{"utf-8", "latin-1"}, data: []byte("héllo"), wantText: "héllo", wantEnc: "utf-8"},
		{name: "utf-8 bom dropped", chain: []string{"utf-8"}, data: append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), wantText: "hi", wantEnc: "utf-8"},
		{name: "utf-16 with bom", chain: []string{"utf-8", "utf-16"}, data: utf16, wantText: "héllo", wantEnc: "utf-16"},
		{name: "utf-16 without bom is not utf-16", chain: []string{"utf-16", "latin-1"}, data: []byte{'h', 0, 'i', 0}, wantText: "h\x00i\x00", wantEnc: "latin-1"},
		{name: "cp1251 when latin-1 is not configured", chain: []string{"utf-8", "utf-16", "cp1251"}, data: cp1251, wantText: "привет", wantEnc: "cp1251"},
		{name: "latin-1 accepts any byte", chain: []string{"utf-8", "latin-1", "cp1251"}, data: []byte{0x63, 0x61, 0x66, 0xE9}, wantText: "café", wantEnc: "latin-1"},
		{name: "lossy fallback drops invalid bytes", chain: []string{"utf-8"}, data: []byte{'a', 0xFF, 'b'}, wantText: "ab", wantEnc: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, enc := decodeWith(mustChain(t, tt.chain...), tt.data)
			if text != tt.wantText {
				t.Errorf("text = %q, expected %q", text, tt.wantText)
			}
			if enc != tt.wantEnc {
				t.Errorf("encoding = %q, expected %q", enc, tt.wantEnc)
			}
		})
	}
}

// TestNewCandidate tests encoding name resolution.
func TestNewCandidate(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"UTF-8", "utf-16", "Latin-1", "cp866", "windows-1252", "ISO-8859-5"} {
		if _, err := newCandidate(name); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
	if _, err := newCandidate("klingon-8"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}
