package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	log "github.com/sirupsen/logrus"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

const ledgerTopic = "ledger_events"

type eventRepository struct {
	db        *sql.DB
	publisher message.Publisher

	handlers    []func(events []domain.Event)
	handlerLock *sync.Mutex
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open event repository: invalid config")
	}
	publisher, ok := config[1].(message.Publisher)
	if !ok {
		return nil, fmt.Errorf("cannot open event repository: invalid publisher")
	}

	return &eventRepository{
		db:          db,
		publisher:   publisher,
		handlers:    make([]func(events []domain.Event), 0),
		handlerLock: &sync.Mutex{},
	}, nil
}

// Save journals the events, then publishes them and runs the registered
// handlers. The journal write shares the caller's transaction, the
// publication does not, so consumers see at-least-once delivery.
func (e *eventRepository) Save(ctx context.Context, events ...domain.Event) error {
	q := querierFromCtx(ctx, e.db)

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %s", event.GetId(), err)
		}
		if _, err := q.ExecContext(
			ctx,
			`INSERT INTO ledger_event (id, type, asset_id, payload, created_at)
			 VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			event.GetId(), string(event.GetType()), int64(event.GetAssetId()),
			string(payload), time.Now().UnixMilli(),
		); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", event.GetId(), err)
		}
	}

	if err := e.publish(events); err != nil {
		log.WithError(err).Error("failed to publish saved events")
	}
	e.dispatch(events)
	return nil
}

// GetByAssetId queries the journal for the full history of an asset,
// ordered by insertion.
func (e *eventRepository) GetByAssetId(
	ctx context.Context, assetId uint64,
) ([]domain.Event, error) {
	q := querierFromCtx(ctx, e.db)

	rows, err := q.QueryContext(
		ctx,
		`SELECT payload FROM ledger_event
		 WHERE asset_id = ? ORDER BY created_at ASC, rowid ASC`,
		int64(assetId),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for asset %d: %w", assetId, err)
	}
	// nolint
	defer rows.Close()

	records := make([][]byte, 0)
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan event payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events for asset %d: %w", assetId, err)
	}

	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		event, err := deserializeEvent(record)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(record))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (e *eventRepository) RegisterEventsHandler(handler func(events []domain.Event)) {
	e.handlerLock.Lock()
	defer e.handlerLock.Unlock()

	e.handlers = append(e.handlers, handler)
}

func (e *eventRepository) ClearRegisteredHandlers() {
	e.handlerLock.Lock()
	defer e.handlerLock.Unlock()

	e.handlers = make([]func(events []domain.Event), 0)
}

func (e *eventRepository) Close() {
	//nolint:errcheck
	e.publisher.Close()
	_ = e.db.Close()
}

func (e *eventRepository) publish(events []domain.Event) error {
	return e.publisher.Publish(ledgerTopic, toWatermillMessages(events)...)
}

// dispatch runs the handlers in go routines
func (e *eventRepository) dispatch(events []domain.Event) {
	if len(events) == 0 {
		return
	}
	e.handlerLock.Lock()
	defer e.handlerLock.Unlock()
	for _, handler := range e.handlers {
		go handler(events)
	}
}

func toWatermillMessages(events []domain.Event) []*message.Message {
	watermillMessages := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}

		watermillMessages = append(
			watermillMessages,
			message.NewMessage(watermill.NewUUID(), payload),
		)
	}

	return watermillMessages
}

func deserializeEvent(buf []byte) (domain.Event, error) {
	var eventType struct {
		Type domain.EventType
	}

	if err := json.Unmarshal(buf, &eventType); err != nil {
		return nil, err
	}

	switch eventType.Type {
	case domain.EventTypeAssetMinted:
		var event = domain.AssetMinted{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetTransferred:
		var event = domain.AssetTransferred{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetListed:
		var event = domain.AssetListed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetPurchased:
		var event = domain.AssetPurchased{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetStaked:
		var event = domain.AssetStaked{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeAssetUnstaked:
		var event = domain.AssetUnstaked{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeYieldClaimed:
		var event = domain.YieldClaimed{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	case domain.EventTypeParamsUpdated:
		var event = domain.ParamsUpdated{}
		if err := json.Unmarshal(buf, &event); err == nil {
			return event, nil
		}
	}

	return nil, fmt.Errorf("unknown event type: %s", eventType.Type)
}
