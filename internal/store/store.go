package store

import (
	"context"

	"pairScope/internal/model"
)

// EntityStore provides keyed lookups and writes for pricing entities.
// Lookups report absence with the bool return; absence is not an error.
type EntityStore interface {
	LoadPair(ctx context.Context, address string) (model.Pair, bool, error)
	SavePairs(ctx context.Context, pairs []model.Pair) error
	LoadToken(ctx context.Context, address string) (model.Token, bool, error)
	SaveTokens(ctx context.Context, tokens []model.Token) error
	LoadBundle(ctx context.Context) (model.Bundle, error)
	SaveBundle(ctx context.Context, bundle model.Bundle) error
}

// TrackedEventSink defines a sink for tracked value events.
type TrackedEventSink interface {
	AppendTrackedEvents(ctx context.Context, events []model.TrackedEvent) error
}
