package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookshelf/pkg/domain"
	"bookshelf/pkg/stream"
)

// DocumentModel is the GORM row backing one document.
type DocumentModel struct {
	Collection string            `gorm:"primaryKey;size:128"`
	DocID      string            `gorm:"primaryKey;size:64;column:doc_id"`
	Fields     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"not null"`
	UpdatedAt  time.Time         `gorm:"not null"`
}

// TableName keeps the table name singular-free and explicit.
func (DocumentModel) TableName() string { return "documents" }

// GormStore implements Store using GORM + Postgres, with live subscriptions
// driven by a Notifier change feed: every local mutation publishes a change
// event, and each subscriber re-queries on events for its collection.
type GormStore struct {
	db       *gorm.DB
	notifier Notifier
	log      *slog.Logger
}

// NewGormStore opens the DB, runs auto-migrations, and attaches the change
// feed used to fan mutations out to subscribers.
func NewGormStore(dsn string, notifier Notifier, log *slog.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&DocumentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &GormStore{db: db, notifier: notifier, log: log}, nil
}

// CreateOrMerge writes fields into a document, allocating an id if needed.
// For an existing document the supplied fields are merged over the stored
// ones inside a transaction.
func (s *GormStore) CreateOrMerge(ctx context.Context, collection, id string, fields Document) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model DocumentModel
		err := tx.First(&model, "collection = ? AND doc_id = ?", collection, id).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			model = DocumentModel{
				Collection: collection,
				DocID:      id,
				Fields:     datatypes.JSONMap(fields.Clone()),
			}
			return tx.Create(&model).Error
		case err != nil:
			return err
		}
		if model.Fields == nil {
			model.Fields = datatypes.JSONMap{}
		}
		for k, v := range fields.Clone() {
			model.Fields[k] = v
		}
		return tx.Save(&model).Error
	})
	if err != nil {
		return "", fmt.Errorf("write document %s/%s: %w: %v", collection, id, domain.ErrStoreUnavailable, err)
	}
	s.publish(ctx, collection, id)
	return id, nil
}

// Delete removes a document. Deleting a missing document succeeds.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Delete(&DocumentModel{}, "collection = ? AND doc_id = ?", collection, id).Error
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w: %v", collection, id, domain.ErrStoreUnavailable, err)
	}
	s.publish(ctx, collection, id)
	return nil
}

// SubscribeDocument emits the live value of one document: its current state
// now, then a fresh snapshot after every change event for its id.
func (s *GormStore) SubscribeDocument(ctx context.Context, collection, id string) *stream.Subscription[Snapshot] {
	out := stream.NewConflated[Snapshot]()
	events, stop, err := s.notifier.Subscribe(ctx, collection)
	if err != nil {
		out.Fail(fmt.Errorf("subscribe %s: %w: %v", collection, domain.ErrStoreUnavailable, err))
		return stream.NewSubscription(out, nil)
	}
	go func() {
		snap, err := s.fetch(ctx, collection, id)
		if err != nil {
			stop()
			out.Fail(err)
			return
		}
		out.Send(snap)
		for ev := range events {
			if ev.ID != id {
				continue
			}
			snap, err := s.fetch(ctx, collection, id)
			if err != nil {
				stop()
				out.Fail(err)
				return
			}
			out.Send(snap)
		}
		// Feed closed underneath us; a cancelled subscription is already
		// closed, so this only reports unexpected teardown.
		out.Fail(fmt.Errorf("change feed closed for %s: %w", collection, domain.ErrStoreUnavailable))
	}()
	return stream.NewSubscription(out, stop)
}

// SubscribeCollection emits the full result set for an equality filter on a
// document field, re-querying after every change in the collection.
func (s *GormStore) SubscribeCollection(ctx context.Context, collection, field, value string) *stream.Subscription[[]Document] {
	out := stream.NewConflated[[]Document]()
	events, stop, err := s.notifier.Subscribe(ctx, collection)
	if err != nil {
		out.Fail(fmt.Errorf("subscribe %s: %w: %v", collection, domain.ErrStoreUnavailable, err))
		return stream.NewSubscription(out, nil)
	}
	go func() {
		docs, err := s.query(ctx, collection, field, value)
		if err != nil {
			stop()
			out.Fail(err)
			return
		}
		out.Send(docs)
		for range events {
			docs, err := s.query(ctx, collection, field, value)
			if err != nil {
				stop()
				out.Fail(err)
				return
			}
			out.Send(docs)
		}
		out.Fail(fmt.Errorf("change feed closed for %s: %w", collection, domain.ErrStoreUnavailable))
	}()
	return stream.NewSubscription(out, stop)
}

func (s *GormStore) fetch(ctx context.Context, collection, id string) (Snapshot, error) {
	var model DocumentModel
	err := s.db.WithContext(ctx).First(&model, "collection = ? AND doc_id = ?", collection, id).Error
	if err == gorm.ErrRecordNotFound {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read document %s/%s: %w: %v", collection, id, domain.ErrStoreUnavailable, err)
	}
	return Snapshot{Exists: true, Data: Document(model.Fields)}, nil
}

func (s *GormStore) query(ctx context.Context, collection, field, value string) ([]Document, error) {
	var models []DocumentModel
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Where(datatypes.JSONQuery("fields").Equals(value, field)).
		Order("doc_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w: %v", collection, field, domain.ErrStoreUnavailable, err)
	}
	res := make([]Document, 0, len(models))
	for _, m := range models {
		res = append(res, Document(m.Fields))
	}
	return res, nil
}

// publish announces a change. The write is already durable, so feed errors
// are logged rather than surfaced to the writer.
func (s *GormStore) publish(ctx context.Context, collection, id string) {
	if err := s.notifier.Publish(ctx, Event{Collection: collection, ID: id}); err != nil {
		s.log.Warn("change feed publish failed", "collection", collection, "id", id, "error", err)
	}
}
