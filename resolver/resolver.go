// Package resolver normalizes user-supplied channel references (URLs, handles,
// legacy usernames, or canonical IDs) into a canonical platform channel ID plus
// display name. Resolution is an ordered chain of strategies from cheapest and
// most specific to most expensive; each strategy's "no result" is non-fatal so
// heterogeneous input degrades gracefully instead of failing on the first
// mismatch.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"munchwatch/telemetry"
)

var (
	// ErrInvalidIdentifier is returned for an empty (after trimming) reference.
	ErrInvalidIdentifier = errors.New("invalid channel identifier")
	// ErrNotFound is returned when every resolution strategy is exhausted.
	ErrNotFound = errors.New("channel not found")
)

// Identity is the result of a successful resolution.
type Identity struct {
	ChannelID   string
	ChannelName string
}

// Directory is the platform lookup surface the resolver queries. Each method
// returns (nil, nil) when the directory has no match; an error means the
// lookup itself failed (treated as "no result" for that strategy).
type Directory interface {
	LookupByID(ctx context.Context, id string) (*Identity, error)
	LookupByHandle(ctx context.Context, handle string) (*Identity, error)
	LookupByUsername(ctx context.Context, username string) (*Identity, error)
	SearchByText(ctx context.Context, query string) (*Identity, error)
}

// Resolver resolves identifiers against one platform directory. IDPrefix and
// IDLength describe the platform's canonical ID shape (YouTube: "UC", 24).
type Resolver struct {
	Dir      Directory
	IDPrefix string
	IDLength int
}

// NewYouTube returns a resolver configured for YouTube's canonical ID shape.
func NewYouTube(dir Directory) *Resolver {
	return &Resolver{Dir: dir, IDPrefix: "UC", IDLength: 24}
}

// strategy attempts one resolution approach. nil result means no match.
type strategy struct {
	name string
	run  func(ctx context.Context) (*Identity, error)
}

// Resolve runs the fallback chain and returns the first successful identity.
// Directory errors are logged per strategy and never abort the chain; only
// total exhaustion yields ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Identity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrInvalidIdentifier
	}

	ref := classify(trimmed, r.IDPrefix, r.IDLength)
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("identifier", trimmed))

	var chain []strategy

	if ref.Kind == KindCanonical {
		// Canonical fast path: confirm the ID and fetch its name. Failure is
		// not fatal; a malformed or terminated channel falls through to the
		// other strategies.
		chain = append(chain, strategy{"canonical", func(ctx context.Context) (*Identity, error) {
			return r.Dir.LookupByID(ctx, trimmed)
		}})
	}
	handleTried := ""
	if ref.Handle != "" {
		handle := ref.Handle
		handleTried = handle
		chain = append(chain, strategy{"handle", func(ctx context.Context) (*Identity, error) {
			return r.Dir.LookupByHandle(ctx, handle)
		}})
	}
	// Legacy username / custom URL, unless it would retry the exact string
	// that the handle strategy already attempted.
	if ref.Fragment != "" && ref.Fragment != handleTried {
		fragment := ref.Fragment
		chain = append(chain, strategy{"username", func(ctx context.Context) (*Identity, error) {
			return r.Dir.LookupByUsername(ctx, fragment)
		}})
	}
	query := ref.Fragment
	if query == "" {
		query = trimmed
	}
	chain = append(chain, strategy{"search", func(ctx context.Context) (*Identity, error) {
		return r.Dir.SearchByText(ctx, query)
	}})

	for _, s := range chain {
		id, err := s.run(ctx)
		if err != nil {
			logger.Warn("resolver strategy failed", slog.String("strategy", s.name), slog.Any("err", err))
			continue
		}
		if id == nil {
			logger.Debug("resolver strategy found nothing", slog.String("strategy", s.name))
			continue
		}
		logger.Info("resolved channel identifier", slog.String("strategy", s.name), slog.String("channel_id", id.ChannelID), slog.String("channel_name", id.ChannelName))
		if telemetry.ResolveSucceeded != nil {
			telemetry.ResolveSucceeded.Inc()
		}
		return id, nil
	}

	logger.Warn("resolver exhausted all strategies")
	if telemetry.ResolveFailed != nil {
		telemetry.ResolveFailed.Inc()
	}
	return nil, ErrNotFound
}
