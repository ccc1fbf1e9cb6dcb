package resolver

import (
	"net/url"
	"strings"
)

// Kind tags the syntactic shape of a channel reference.
type Kind int

const (
	KindPlainText Kind = iota
	KindCanonical
	KindHandle
	KindURLPath
)

// reference is the classified form of a raw identifier. Handle is set for
// "@name" forms (bare or inside a profile URL); Fragment is the best name
// fragment available for username/search lookups.
type reference struct {
	Kind     Kind
	Handle   string
	Fragment string
}

// reserved first path segments that are never channel names.
var reservedPathSegments = map[string]bool{
	"channel": true,
	"results": true,
	"feed":    true,
	"watch":   true,
}

func classify(trimmed, idPrefix string, idLength int) reference {
	if idPrefix != "" && strings.HasPrefix(trimmed, idPrefix) && len(trimmed) == idLength {
		return reference{Kind: KindCanonical, Fragment: trimmed}
	}
	if strings.HasPrefix(trimmed, "@") {
		name := strings.TrimPrefix(trimmed, "@")
		return reference{Kind: KindHandle, Handle: name, Fragment: name}
	}
	if strings.Contains(trimmed, "youtube.com/") {
		if ref, ok := classifyURL(trimmed); ok {
			return ref
		}
		// Unparseable URL: fall back to using the raw string as-is.
	}
	return reference{Kind: KindPlainText, Fragment: trimmed}
}

func classifyURL(raw string) (reference, bool) {
	withScheme := raw
	if !strings.Contains(raw, "://") {
		withScheme = "https://" + raw
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return reference{}, false
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return reference{}, false
	}
	switch {
	case strings.HasPrefix(parts[0], "@"):
		name := strings.TrimPrefix(parts[0], "@")
		return reference{Kind: KindHandle, Handle: name, Fragment: name}, true
	case parts[0] == "c" && len(parts) > 1:
		return reference{Kind: KindURLPath, Fragment: parts[1]}, true
	case parts[0] == "user" && len(parts) > 1:
		return reference{Kind: KindURLPath, Fragment: parts[1]}, true
	case len(parts) == 1 && !reservedPathSegments[parts[0]]:
		// A bare path segment: custom name, legacy username, or a handle
		// typed without its "@".
		return reference{Kind: KindURLPath, Fragment: parts[0]}, true
	}
	return reference{}, false
}
