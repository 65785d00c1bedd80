package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

const (
	ledgerTopic      = "ledger_events"
	eventSequenceKey = "event_sequence"
)

type eventRepository struct {
	store     *badgerhold.Store
	publisher message.Publisher

	handlers    []func(events []domain.Event)
	handlerLock *sync.Mutex
}

type eventDTO struct {
	Id        string
	Type      domain.EventType
	AssetId   uint64
	Seq       uint64
	Payload   []byte
	CreatedAt int64
}

type eventSequenceDTO struct {
	Last uint64
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	store, ok := config[0].(*badgerhold.Store)
	if !ok {
		return nil, fmt.Errorf("invalid store")
	}
	publisher, ok := config[1].(message.Publisher)
	if !ok {
		return nil, fmt.Errorf("invalid publisher")
	}

	return &eventRepository{
		store:       store,
		publisher:   publisher,
		handlers:    make([]func(events []domain.Event), 0),
		handlerLock: &sync.Mutex{},
	}, nil
}

// Save journals the events in the store, then publishes them and runs the
// registered handlers. The journal write shares the caller's transaction,
// the publication does not, so consumers see at-least-once delivery.
func (e *eventRepository) Save(ctx context.Context, events ...domain.Event) error {
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %s", event.GetId(), err)
		}
		seq, err := e.nextSeq(ctx)
		if err != nil {
			return err
		}
		dto := eventDTO{
			Id:        event.GetId(),
			Type:      event.GetType(),
			AssetId:   event.GetAssetId(),
			Seq:       seq,
			Payload:   payload,
			CreatedAt: time.Now().UnixMilli(),
		}
		var insertFn func() error
		if ctx.Value("tx") != nil {
			tx := ctx.Value("tx").(*badger.Txn)
			insertFn = func() error {
				return e.store.TxInsert(tx, dto.Id, dto)
			}
		} else {
			insertFn = func() error {
				return e.store.Insert(dto.Id, dto)
			}
		}
		if err := insertFn(); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				continue
			}
			if errors.Is(err, badger.ErrConflict) {
				attempts := 1
				for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
					time.Sleep(100 * time.Millisecond)
					err = insertFn()
					attempts++
				}
			}
			if err != nil {
				return err
			}
		}
	}

	if err := e.publish(events); err != nil {
		log.WithError(err).Error("failed to publish saved events")
	}
	e.dispatch(events)
	return nil
}

func (e *eventRepository) GetByAssetId(
	ctx context.Context, assetId uint64,
) ([]domain.Event, error) {
	dtos := make([]eventDTO, 0)
	query := badgerhold.Where("AssetId").Eq(assetId)
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = e.store.TxFind(tx, &dtos, query)
	} else {
		err = e.store.Find(&dtos, query)
	}
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	sort.Slice(dtos, func(i, j int) bool {
		return dtos[i].Seq < dtos[j].Seq
	})

	events := make([]domain.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, err := deserializeEvent(dto.Payload)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(dto.Payload))
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
	// nolint:all
	e.store.Close()
}

func (e *eventRepository) nextSeq(ctx context.Context) (uint64, error) {
	var seq eventSequenceDTO
	var getFn func() error
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		getFn = func() error {
			return e.store.TxGet(tx, eventSequenceKey, &seq)
		}
		upsertFn = func() error {
			return e.store.TxUpsert(tx, eventSequenceKey, &seq)
		}
	} else {
		getFn = func() error {
			return e.store.Get(eventSequenceKey, &seq)
		}
		upsertFn = func() error {
			return e.store.Upsert(eventSequenceKey, &seq)
		}
	}
	if err := getFn(); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return 0, err
	}
	seq.Last++
	if err := upsertFn(); err != nil {
		return 0, err
	}
	return seq.Last, nil
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
