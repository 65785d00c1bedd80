package domain

import "context"

type EventRepository interface {
	// Save journals the events within the calling operation's transaction and
	// hands them to the pub/sub for asynchronous dispatch.
	Save(ctx context.Context, events ...Event) error
	GetByAssetId(ctx context.Context, assetId uint64) ([]Event, error)
	RegisterEventsHandler(handler func(events []Event))
	ClearRegisteredHandlers()
	Close()
}
