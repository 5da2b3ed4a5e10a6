// Package clipboard reads release links pasted from the system clipboard.
package clipboard

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/droneq/droneq/internal/release"
)

// maxLinkLen bounds what is accepted as a single pasted link. Magnets with
// many trackers run long, so this is generous.
const maxLinkLen = 8192

var clipboardReadAll = clipboard.ReadAll

// ExtractLink returns text as a normalized release link, or "" when it is
// not one.
func ExtractLink(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxLinkLen || strings.ContainsAny(text, "\n\r") {
		return ""
	}

	switch release.KindOf(text) {
	case release.KindUnknown:
		return ""
	case release.KindMagnet:
		if _, err := release.ParseMagnet(text); err != nil {
			return ""
		}
	}
	return release.Normalize(text)
}

// ReadLink returns the release link currently on the clipboard, or "".
func ReadLink() string {
	text, err := clipboardReadAll()
	if err != nil {
		return ""
	}
	return ExtractLink(text)
}
