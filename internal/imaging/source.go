// Package imaging classifies and validates image evidence attached to a
// report before anything touches the network or the asset store.
package imaging

import "strings"

// SourceKind is the closed set of image source variants. Classification is
// exhaustive; there is no "unsupported type" fallthrough.
type SourceKind int

const (
	KindAbsent SourceKind = iota
	KindBase64
	KindURL
)

func (k SourceKind) String() string {
	switch k {
	case KindBase64:
		return "base64"
	case KindURL:
		return "url"
	default:
		return "absent"
	}
}

// Client-supplied classification hints.
const (
	HintAuto   = "auto"
	HintBase64 = "base64"
	HintURL    = "url"
)

const dataURIPrefix = "data:image/"

// Classify resolves a raw image value and a client hint to a SourceKind.
// With HintAuto, a data-URI prefix means base64 and any other non-empty
// value is treated as a URL — bare hostnames included, scheme validation
// happens later in the validator.
func Classify(value, hint string) SourceKind {
	if value == "" {
		return KindAbsent
	}
	switch hint {
	case HintBase64:
		return KindBase64
	case HintURL:
		return KindURL
	}
	if strings.HasPrefix(value, dataURIPrefix) {
		return KindBase64
	}
	return KindURL
}
