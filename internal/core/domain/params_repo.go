package domain

import "context"

type ParamsRepository interface {
	// Get returns nil without error before the first seed.
	Get(ctx context.Context) (*Params, error)
	Upsert(ctx context.Context, params Params) error
	Close()
}
