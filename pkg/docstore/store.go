// Package docstore stores opaque JSON documents in a SQL database, keyed by
// scope, collection and document ID.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/database"
)

// Record is a stored document.
type Record struct {
	ID         uint   `gorm:"primaryKey"`
	Scope      string `gorm:"uniqueIndex:idx_documents_key;not null"`
	Collection string `gorm:"uniqueIndex:idx_documents_key;not null"`
	DocID      string `gorm:"column:doc_id;uniqueIndex:idx_documents_key;not null"`
	Data       JSON   `gorm:"type:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName sets the table name.
func (Record) TableName() string {
	return "documents"
}

// WriteResult describes a successful create or update.
type WriteResult struct {
	Collection string    `json:"collection"`
	DocID      string    `json:"doc_id"`
	UpdateTime time.Time `json:"update_time"`
}

// Store is a gorm-backed document store.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

// New returns a Store using db.
func New(db *gorm.DB, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{
		db:     db,
		logger: logger.Named("docstore"),
	}
}

// Close logs the pool statistics and closes the underlying database pool.
func (s *Store) Close() error {
	if stats, err := database.GetPoolStats(s.db); err == nil {
		s.logger.Debug("closing database pool",
			"open_connections", stats.OpenConnections,
			"in_use", stats.InUse,
			"idle", stats.Idle,
			"wait_count", stats.WaitCount,
			"wait_duration", stats.WaitDuration,
		)
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("error getting database handle: %w", err)
	}
	return sqlDB.Close()
}

func validateKey(scope, collection, docID string) error {
	return validation.Errors{
		"scope":      validation.Validate(scope, validation.Required),
		"collection": validation.Validate(collection, validation.Required),
		"doc_id":     validation.Validate(docID, validation.Required),
	}.Filter()
}

func (s *Store) find(tx *gorm.DB, scope, collection, docID string) (*Record, error) {
	var rec Record
	err := tx.
		Where("scope = ? AND collection = ? AND doc_id = ?", scope, collection, docID).
		First(&rec).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, backend.NotFound("GetDocument",
			fmt.Sprintf("document not found: %s/%s", collection, docID))
	}
	if err != nil {
		return nil, fmt.Errorf("error getting document: %w", err)
	}
	return &rec, nil
}

// Get returns the payload of a document.
func (s *Store) Get(ctx context.Context, scope, collection, docID string) (backend.Document, error) {
	if err := validateKey(scope, collection, docID); err != nil {
		return nil, err
	}

	rec, err := s.find(s.db.WithContext(ctx), scope, collection, docID)
	if err != nil {
		return nil, err
	}
	return decodeMap(rec.Data)
}

// Set creates the document or replaces its payload.
func (s *Store) Set(ctx context.Context, scope, collection, docID string, data backend.Document) (*WriteResult, error) {
	if err := validateKey(scope, collection, docID); err != nil {
		return nil, err
	}

	encoded, err := encodeMap(data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := Record{
		Scope:      scope,
		Collection: collection,
		DocID:      docID,
		Data:       encoded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "scope"},
				{Name: "collection"},
				{Name: "doc_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).
		Error; err != nil {
		return nil, fmt.Errorf("error writing document: %w", err)
	}

	s.logger.Debug("document written",
		"scope", scope,
		"collection", collection,
		"doc_id", docID,
	)

	return &WriteResult{
		Collection: collection,
		DocID:      docID,
		UpdateTime: now,
	}, nil
}

// Merge shallow-merges data into an existing document.
func (s *Store) Merge(ctx context.Context, scope, collection, docID string, data backend.Document) (*WriteResult, error) {
	if err := validateKey(scope, collection, docID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.find(tx, scope, collection, docID)
		if err != nil {
			return err
		}

		existing, err := decodeMap(rec.Data)
		if err != nil {
			return err
		}
		for k, v := range data {
			existing[k] = v
		}
		encoded, err := encodeMap(existing)
		if err != nil {
			return err
		}

		return tx.Model(rec).
			Updates(map[string]any{
				"data":       encoded,
				"updated_at": now,
			}).
			Error
	})
	if err != nil {
		return nil, err
	}

	return &WriteResult{
		Collection: collection,
		DocID:      docID,
		UpdateTime: now,
	}, nil
}

// Delete removes a document. Deleting a missing document succeeds.
func (s *Store) Delete(ctx context.Context, scope, collection, docID string) error {
	if err := validateKey(scope, collection, docID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("scope = ? AND collection = ? AND doc_id = ?", scope, collection, docID).
		Delete(&Record{}).
		Error; err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}
	return nil
}

// Search returns documents in a collection matching every constraint.
// Each result has the shape {id, data, create_time, update_time}.
func (s *Store) Search(ctx context.Context, scope string, q backend.SearchQuery) ([]backend.Document, error) {
	errs := validation.Errors{
		"scope":      validation.Validate(scope, validation.Required),
		"collection": validation.Validate(q.Collection, validation.Required),
		"limit":      validation.Validate(q.Limit, validation.Min(0)),
	}
	if err := errs.Filter(); err != nil {
		return nil, err
	}

	constraints, err := normalize(q.Constraints)
	if err != nil {
		return nil, err
	}

	var recs []Record
	if err := s.db.WithContext(ctx).
		Where("scope = ? AND collection = ?", scope, q.Collection).
		Order("doc_id").
		Find(&recs).
		Error; err != nil {
		return nil, fmt.Errorf("error searching documents: %w", err)
	}

	hits := make([]hit, 0, len(recs))
	for _, rec := range recs {
		data, err := decodeMap(rec.Data)
		if err != nil {
			s.logger.Warn("skipping undecodable document",
				"collection", rec.Collection,
				"doc_id", rec.DocID,
				"error", err,
			)
			continue
		}
		if !matches(data, constraints) {
			continue
		}
		hits = append(hits, hit{rec: rec, data: data})
	}

	sortHits(hits, q.OrderBy)

	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}

	results := make([]backend.Document, 0, len(hits))
	for _, h := range hits {
		results = append(results, backend.Document{
			"id":          h.rec.DocID,
			"data":        h.data,
			"create_time": h.rec.CreatedAt.UTC(),
			"update_time": h.rec.UpdatedAt.UTC(),
		})
	}
	return results, nil
}
