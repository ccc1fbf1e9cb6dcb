package resolver

import (
	"regexp"
	"strings"
)

var twitchURLPattern = regexp.MustCompile(`twitch\.tv/([^/?#&]+)`)

// TwitchLogin extracts the login name from a Twitch channel URL. Twitch's
// login doubles as its stable channel identifier for status queries, so no
// directory chain is needed; a non-URL input is taken as the login itself.
func TwitchLogin(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidIdentifier
	}
	if m := twitchURLPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}
	return trimmed, nil
}
