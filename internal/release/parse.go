// Package release classifies the links a queue item was grabbed from.
package release

import (
	"net/url"
	"path"
	"strings"

	"github.com/droneq/droneq/internal/queue"
)

type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindHTTP       Kind = "http"
	KindNZB        Kind = "nzb"
	KindTorrentURL Kind = "torrent"
	KindMagnet     Kind = "magnet"
)

func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func hasPathSuffix(raw, suffix string) bool {
	if !IsHTTPURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), suffix)
}

func IsTorrentURL(raw string) bool { return hasPathSuffix(raw, ".torrent") }

func IsNZBURL(raw string) bool { return hasPathSuffix(raw, ".nzb") }

func IsMagnet(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if strings.ToLower(u.Scheme) != "magnet" {
		return false
	}
	return u.Opaque != "" || u.RawQuery != ""
}

func KindOf(raw string) Kind {
	s := Normalize(raw)
	switch {
	case s == "":
		return KindUnknown
	case IsMagnet(s):
		return KindMagnet
	case IsTorrentURL(s):
		return KindTorrentURL
	case IsNZBURL(s):
		return KindNZB
	case IsHTTPURL(s):
		return KindHTTP
	default:
		return KindUnknown
	}
}

// ProtocolOf maps a link kind to the download protocol. Plain HTTP links
// come from newznab indexers, so they count as usenet.
func ProtocolOf(k Kind) queue.Protocol {
	switch k {
	case KindMagnet, KindTorrentURL:
		return queue.ProtocolTorrent
	case KindNZB, KindHTTP:
		return queue.ProtocolUsenet
	default:
		return queue.ProtocolUnknown
	}
}

// CanonicalKey returns the key a link is blacklisted under. Magnets key on
// their infohash so re-announced magnets with other trackers still match.
func CanonicalKey(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return ""
	}
	if IsMagnet(s) {
		if m, err := ParseMagnet(s); err == nil {
			return "btih:" + m.InfoHash
		}
		return strings.ToLower(s)
	}
	if IsHTTPURL(s) {
		if u, err := url.Parse(s); err == nil {
			u.Fragment = ""
			u.Scheme = strings.ToLower(u.Scheme)
			u.Host = strings.ToLower(u.Host)
			return u.String()
		}
	}
	return s
}

// Title derives a display name for a link: the magnet dn, or the last path
// segment without its extension.
func Title(raw string) string {
	s := Normalize(raw)
	if IsMagnet(s) {
		if m, err := ParseMagnet(s); err == nil && m.DisplayName != "" {
			return m.DisplayName
		}
		return ""
	}
	if !IsHTTPURL(s) {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return u.Host
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
