package clipboard

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractLink(t *testing.T) {
	const magnet = "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&dn=Show.S01E01"

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"NZB link", "https://indexer.example/get/Show.S01E01.nzb", "https://indexer.example/get/Show.S01E01.nzb"},
		{"Torrent link", "http://tracker.example/t/Show.torrent", "http://tracker.example/t/Show.torrent"},
		{"Plain indexer link", "https://indexer.example/api?t=get&id=42", "https://indexer.example/api?t=get&id=42"},
		{"Magnet", magnet, magnet},
		{"Trimmed", "  " + magnet + "\t", magnet},

		{"Empty", "", ""},
		{"Whitespace", "   ", ""},
		{"Plain text", "copy this later", ""},
		{"Multiline", "https://a.example/x.nzb\nhttps://b.example/y.nzb", ""},
		{"Magnet without hash", "magnet:?dn=Show", ""},
		{"Unsupported scheme", "ftp://files.example/Show.nzb", ""},
		{"Too long", "https://indexer.example/" + strings.Repeat("a", maxLinkLen), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLink(tt.input); got != tt.expected {
				t.Errorf("ExtractLink(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReadLink(t *testing.T) {
	orig := clipboardReadAll
	t.Cleanup(func() { clipboardReadAll = orig })

	clipboardReadAll = func() (string, error) { return " https://indexer.example/get/Show.nzb ", nil }
	if got := ReadLink(); got != "https://indexer.example/get/Show.nzb" {
		t.Errorf("ReadLink() = %q", got)
	}

	clipboardReadAll = func() (string, error) { return "", errors.New("no clipboard utility") }
	if got := ReadLink(); got != "" {
		t.Errorf("ReadLink() on error = %q, want empty", got)
	}
}
