package avbridge

import (
	"regexp"
)

// schemeRE matches a leading URL scheme of the form "[a-z]+://".
var schemeRE = regexp.MustCompile(`^[a-z]+://`)

// LocationKind distinguishes a filesystem path from a URL.
type LocationKind int

const (
	LocationPath LocationKind = iota
	LocationURL
)

// Location is an abstract source or sink: either a filesystem path or a
// URL.
type Location struct {
	raw  string
	kind LocationKind
}

// NewLocation classifies s as a URL if it begins with a scheme of the form
// "[a-z]+://"; otherwise it is treated as a filesystem path.
func NewLocation(s string) Location {
	if schemeRE.MatchString(s) {
		return Location{raw: s, kind: LocationURL}
	}
	return Location{raw: s, kind: LocationPath}
}

// Kind reports whether the Location is a path or a URL.
func (l Location) Kind() LocationKind { return l.kind }

// String returns the Location's original string form.
func (l Location) String() string { return l.raw }

// IsURL reports whether the Location was classified as a URL.
func (l Location) IsURL() bool { return l.kind == LocationURL }

// cString returns l as the byte sequence the backend's C string argument
// expects: the host OS's native path encoding on Unix, UTF-8 elsewhere.
// See location_unix.go / location_other.go.
func (l Location) cString() []byte { return nativePathBytes(l.raw) }
