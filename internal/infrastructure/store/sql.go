package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"flipledger/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BuildRecordRow is one build record in the SQL store. Seq preserves insertion order.
type BuildRecordRow struct {
	Seq       uint           `gorm:"column:seq;primaryKey;autoIncrement"`
	SKU       string         `gorm:"column:sku;type:varchar(32);uniqueIndex;not null"`
	Payload   datatypes.JSON `gorm:"column:payload;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (BuildRecordRow) TableName() string {
	return "build_records"
}

// SQL stores records as JSON payloads keyed by SKU, via gorm (sqlite or postgres).
type SQL struct {
	DB *gorm.DB
	mu sync.Mutex
}

func (r BuildRecordRow) record() (Record, error) {
	rec := Record{}
	dec := json.NewDecoder(bytes.NewReader(r.Payload))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, &domain.StoreIOError{Op: "parse", Path: "build_records/" + r.SKU, Err: err}
	}
	return rec, nil
}

func encodePayload(rec Record) (datatypes.JSON, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, &domain.StoreIOError{Op: "encode", Path: "build_records", Err: err}
	}
	return datatypes.JSON(b), nil
}

func (s *SQL) Upsert(ctx context.Context, sku int, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.Itoa(sku)
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return &domain.StoreIOError{Op: "begin", Err: tx.Error}
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var row BuildRecordRow
	err := tx.Where("sku = ?", key).First(&row).Error
	switch {
	case err == nil:
		existing, err := row.record()
		if err != nil {
			tx.Rollback()
			return err
		}
		merge(existing, rec)
		payload, err := encodePayload(existing)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Model(&row).Update("payload", payload).Error; err != nil {
			tx.Rollback()
			return &domain.StoreIOError{Op: "update", Path: "build_records/" + key, Err: err}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		payload, err := encodePayload(withSKU(sku, rec))
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Create(&BuildRecordRow{SKU: key, Payload: payload}).Error; err != nil {
			tx.Rollback()
			return &domain.StoreIOError{Op: "insert", Path: "build_records/" + key, Err: err}
		}
	default:
		tx.Rollback()
		return &domain.StoreIOError{Op: "read", Path: "build_records/" + key, Err: err}
	}
	if err := tx.Commit().Error; err != nil {
		return &domain.StoreIOError{Op: "commit", Path: "build_records/" + key, Err: err}
	}
	return nil
}

func (s *SQL) Find(ctx context.Context, sku int) (Record, error) {
	var row BuildRecordRow
	if err := s.DB.WithContext(ctx).Where("sku = ?", strconv.Itoa(sku)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %d: %w", sku, domain.ErrNotFound)
		}
		return nil, &domain.StoreIOError{Op: "read", Path: "build_records", Err: err}
	}
	return row.record()
}

func (s *SQL) ListAll(ctx context.Context) ([]Record, error) {
	var rows []BuildRecordRow
	if err := s.DB.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, &domain.StoreIOError{Op: "read", Path: "build_records", Err: err}
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			// Keep the listing alive; the caller skips records it cannot decode.
			rec = Record{KeySKU: row.SKU}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQL) Delete(ctx context.Context, sku int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.DB.WithContext(ctx).Where("sku = ?", strconv.Itoa(sku)).Delete(&BuildRecordRow{})
	if res.Error != nil {
		return &domain.StoreIOError{Op: "delete", Path: "build_records", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sku %d: %w", sku, domain.ErrNotFound)
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return &domain.StoreIOError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &domain.StoreIOError{Op: "ping", Err: err}
	}
	return nil
}
