package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"adt-service/internal/domain"
	"adt-service/internal/infrastructure/cache"
	"adt-service/internal/infrastructure/metrics"
	"adt-service/pkg/database"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AdvertisementRepository is the record store. Lookups of a missing row and
// writes that match no row return sql.ErrNoRows; uniqueness violations
// return database.ErrDuplicateKey.
type AdvertisementRepository interface {
	CreateAdvertisement(ctx context.Context, ad *domain.CreateAdvertisement) (*domain.Advertisement, error)
	GetAdvertisementByID(ctx context.Context, id int64) (*domain.Advertisement, error)
	UpdateAdvertisement(ctx context.Context, id int64, patch *domain.AdvertisementPatch) error
	DeleteAdvertisement(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type sqlAdvertisementRepository struct {
	db       *database.DB
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.RepositoryMetrics
	tracer   trace.Tracer

	// writes counts committed updates and deletes. A read only caches what
	// it fetched if no write landed in between.
	writes atomic.Uint64
}

func NewSQLAdvertisementRepository(db *database.DB, cache cache.Cache, cacheTTL time.Duration, metrics *metrics.RepositoryMetrics) AdvertisementRepository {
	tracer := otel.Tracer("adt-service/repository")
	return &sqlAdvertisementRepository{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		tracer:   tracer,
	}
}

const selectAdvertisement = `
	SELECT id, owner, header, description, creation_time
	FROM adt
	WHERE id = ?`

// advanceSequence moves the postgres id sequence past an explicitly
// inserted id so later generated ids do not collide with it.
const advanceSequence = `
	SELECT setval(seq, GREATEST(?, COALESCE(pg_sequence_last_value(seq), 0)))
	FROM (SELECT pg_get_serial_sequence('adt', 'id')::regclass AS seq) s`

func cacheKey(id int64) string {
	return fmt.Sprintf("adt:%d", id)
}

func (r *sqlAdvertisementRepository) CreateAdvertisement(ctx context.Context, ad *domain.CreateAdvertisement) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CreateAdvertisement")
	defer span.End()

	span.SetAttributes(attribute.String("adt.owner", ad.Owner))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("CreateAdvertisement", status, startTime) }()

	id, err := r.insert(ctx, ad)
	if err != nil {
		err = database.WrapError(err)
		if errors.Is(err, database.ErrDuplicateKey) {
			status = "conflict"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to insert advertisement: %w", err)
	}

	span.SetAttributes(attribute.Int64("adt.id", id))

	var inserted domain.Advertisement
	if err := r.db.GetContext(ctx, &inserted, r.db.Rebind(selectAdvertisement), id); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch inserted advertisement: %w", err)
	}

	return &inserted, nil
}

func (r *sqlAdvertisementRepository) insert(ctx context.Context, ad *domain.CreateAdvertisement) (int64, error) {
	query := "INSERT INTO adt (owner, header, description) VALUES (?, ?, ?)"
	args := []interface{}{ad.Owner, ad.Header, ad.Description}
	if ad.ID != nil {
		query = "INSERT INTO adt (id, owner, header, description) VALUES (?, ?, ?, ?)"
		args = append([]interface{}{*ad.ID}, args...)
	}

	if r.db.DriverName() == database.DriverPostgres {
		if ad.ID != nil {
			return r.insertWithID(ctx, query, args)
		}
		var id int64
		err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	if ad.ID != nil {
		return *ad.ID, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// insertWithID inserts a row with a caller supplied id and advances the
// postgres sequence in the same transaction.
func (r *sqlAdvertisementRepository) insertWithID(ctx context.Context, query string, args []interface{}) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowxContext(ctx, tx.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(advanceSequence), id); err != nil {
		return 0, fmt.Errorf("failed to advance id sequence: %w", err)
	}

	return id, tx.Commit()
}

func (r *sqlAdvertisementRepository) GetAdvertisementByID(ctx context.Context, id int64) (*domain.Advertisement, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAdvertisementByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("adt.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("GetAdvertisementByID", status, startTime) }()

	key := cacheKey(id)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Get")
	cached, err := r.cache.Get(cacheSpanCtx, key)
	cacheSpan.End()

	if err == nil {
		var ad domain.Advertisement
		if err := json.Unmarshal([]byte(cached), &ad); err == nil {
			status = "cache_hit"
			return &ad, nil
		}
	}

	generation := r.writes.Load()

	ad := &domain.Advertisement{}
	if err := r.db.GetContext(ctx, ad, r.db.Rebind(selectAdvertisement), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch advertisement: %w", err)
	}

	r.fill(ctx, key, ad, generation)

	return ad, nil
}

// UpdateAdvertisement overwrites the patched columns in a single statement,
// so a row deleted concurrently is reported as sql.ErrNoRows.
func (r *sqlAdvertisementRepository) UpdateAdvertisement(ctx context.Context, id int64, patch *domain.AdvertisementPatch) error {
	ctx, span := r.tracer.Start(ctx, "Repository UpdateAdvertisement")
	defer span.End()

	span.SetAttributes(attribute.Int64("adt.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("UpdateAdvertisement", status, startTime) }()

	query := `
		UPDATE adt
		SET owner = COALESCE(?, owner),
			header = COALESCE(?, header),
			description = COALESCE(?, description)
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), patch.Owner, patch.Header, patch.Description, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to update advertisement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}

	if rowsAffected == 0 {
		status = "not_found"
		return sql.ErrNoRows
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *sqlAdvertisementRepository) DeleteAdvertisement(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "Repository DeleteAdvertisement")
	defer span.End()

	span.SetAttributes(attribute.Int64("adt.id", id))

	startTime := time.Now()
	status := "success"
	defer func() { r.metrics.Observe("DeleteAdvertisement", status, startTime) }()

	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM adt WHERE id = ?"), id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}

	if rowsAffected == 0 {
		status = "not_found"
		return sql.ErrNoRows
	}

	r.invalidate(ctx, id)

	return nil
}

// fill caches ad unless a write was committed since generation was read.
// A write that lands while Set is in flight is caught by the second check,
// which drops the entry again.
func (r *sqlAdvertisementRepository) fill(ctx context.Context, key string, ad *domain.Advertisement, generation uint64) {
	if r.writes.Load() != generation {
		return
	}

	adJSON, err := json.Marshal(ad)
	if err != nil {
		return
	}

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Set")
	defer cacheSpan.End()

	if err := r.cache.Set(cacheSpanCtx, key, string(adJSON), r.cacheTTL); err != nil {
		cacheSpan.RecordError(err)
		return
	}

	if r.writes.Load() != generation {
		if err := r.cache.Delete(cacheSpanCtx, key); err != nil {
			cacheSpan.RecordError(err)
		}
	}
}

func (r *sqlAdvertisementRepository) invalidate(ctx context.Context, id int64) {
	r.writes.Add(1)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Delete")
	if err := r.cache.Delete(cacheSpanCtx, cacheKey(id)); err != nil {
		cacheSpan.RecordError(err)
	}
	cacheSpan.End()
}

func (r *sqlAdvertisementRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
