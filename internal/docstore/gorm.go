package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aurevo/aurevo-server/internal/logger"
)

// Record is the SQL shape of a document: the owner and timestamps are real
// columns, everything else lives in the JSON payload.
type Record struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Collection string         `gorm:"size:64;not null;index:idx_document_coll_owner,priority:1" json:"collection"`
	OwnerID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_document_coll_owner,priority:2" json:"owner_id"`
	Fields     datatypes.JSON `gorm:"not null" json:"fields"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Record) TableName() string {
	return "document"
}

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type GormStore struct {
	db      *gorm.DB
	log     *logger.Logger
	indexes Indexes
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger, indexes Indexes) *GormStore {
	storeLog := baseLog.With("store", "GormStore")
	return &GormStore{db: db, log: storeLog, indexes: indexes}
}

func (s *GormStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if q.OrderBy != "" && !s.indexes.Allows(q.Collection, q.OrderBy) {
		s.log.Debug("No declared index for ordered query",
			"collection", q.Collection, "order_by", q.OrderBy)
		return nil, ErrMissingIndex
	}

	tx := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("collection = ?", q.Collection)
	if q.OwnerID != uuid.Nil {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	for _, f := range q.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return nil, fmt.Errorf("%w: bad filter field %q", ErrMissingIndex, f.Field)
		}
		tx = tx.Where(datatypes.JSONQuery("fields").Equals(f.Value, f.Field))
	}
	if q.OrderBy != "" {
		expr, err := orderExpr(q.OrderBy, q.Descending)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(expr)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var records []Record
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(records))
	for _, r := range records {
		d, err := recordToDocument(r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, collection string, id uuid.UUID) (*Document, error) {
	var r Record
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	d, err := recordToDocument(r)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) Create(ctx context.Context, collection string, ownerID uuid.UUID, fields Fields) (*Document, error) {
	now := time.Now().UTC()
	raw, err := json.Marshal(normalizeFields(fields, now))
	if err != nil {
		return nil, fmt.Errorf("marshal document fields: %w", err)
	}
	r := Record{
		ID:         uuid.New(),
		Collection: collection,
		OwnerID:    ownerID,
		Fields:     datatypes.JSON(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	d, err := recordToDocument(r)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) Update(ctx context.Context, collection string, id uuid.UUID, fields Fields) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r Record
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		if err != nil {
			return err
		}
		var existing Fields
		if err := json.Unmarshal(r.Fields, &existing); err != nil {
			return fmt.Errorf("unmarshal document fields: %w", err)
		}
		for k, v := range normalizeFields(fields, now) {
			existing[k] = v
		}
		raw, err := json.Marshal(existing)
		if err != nil {
			return fmt.Errorf("marshal document fields: %w", err)
		}
		return tx.Model(&Record{}).
			Where("id = ?", id).
			Updates(map[string]any{"fields": datatypes.JSON(raw), "updated_at": now}).Error
	})
}

func (s *GormStore) Delete(ctx context.Context, collection string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func orderExpr(field string, descending bool) (string, error) {
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	switch field {
	case "created_at", "updated_at":
		return fmt.Sprintf("%s %s", field, dir), nil
	default:
		if !fieldNamePattern.MatchString(field) {
			return "", fmt.Errorf("%w: bad order field %q", ErrMissingIndex, field)
		}
		return fmt.Sprintf("fields->>'%s' %s", field, dir), nil
	}
}

func recordToDocument(r Record) (Document, error) {
	var fields Fields
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &fields); err != nil {
			return Document{}, fmt.Errorf("unmarshal document fields: %w", err)
		}
	}
	if fields == nil {
		fields = Fields{}
	}
	return Document{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Fields:    fields,
	}, nil
}
