package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"adt-service/internal/domain"
	"adt-service/internal/infrastructure/cache"
	"adt-service/internal/infrastructure/metrics"
	"adt-service/pkg/database"
	"adt-service/pkg/database/dbtest"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRepository(t *testing.T, c cache.Cache) AdvertisementRepository {
	t.Helper()
	ctx := context.TODO()

	db := dbtest.OpenSqlite(ctx, t)
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatal(err)
	}

	return NewSQLAdvertisementRepository(db, c, time.Minute, metrics.NewRepositoryMetrics(prometheus.NewRegistry()))
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	repo := newTestRepository(t, cache.NewNoopCache())

	created, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{
		Owner:       "A",
		Header:      "H",
		Description: "D",
	})
	is.NoErr(err)
	is.True(created.ID > 0)
	is.True(!created.CreationTime.IsZero())
	is.True(!created.CreationTime.After(time.Now()))

	got, err := repo.GetAdvertisementByID(ctx, created.ID)
	is.NoErr(err)
	is.Equal(got.Owner, "A")
	is.Equal(got.Header, "H")
	is.Equal(got.Description, "D")
	is.True(got.CreationTime.Equal(created.CreationTime))

	second, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "A", Header: "H2", Description: "D2"})
	is.NoErr(err)
	is.True(second.ID != created.ID)
}

func TestCreateDuplicateID(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	repo := newTestRepository(t, cache.NewNoopCache())

	id := int64(42)
	_, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{ID: &id, Owner: "A", Header: "first", Description: "D"})
	is.NoErr(err)

	_, err = repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{ID: &id, Owner: "B", Header: "second", Description: "D"})
	is.True(errors.Is(err, database.ErrDuplicateKey))

	got, err := repo.GetAdvertisementByID(ctx, id)
	is.NoErr(err)
	is.Equal(got.Owner, "A")
	is.Equal(got.Header, "first")
}

func TestGetMissing(t *testing.T) {
	is := is.New(t)
	repo := newTestRepository(t, cache.NewNoopCache())

	_, err := repo.GetAdvertisementByID(context.TODO(), 999999)
	is.True(errors.Is(err, sql.ErrNoRows))
}

func TestUpdatePatchesOnlyGivenFields(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	repo := newTestRepository(t, cache.NewNoopCache())

	created, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "A", Header: "H", Description: "D"})
	is.NoErr(err)

	is.NoErr(repo.UpdateAdvertisement(ctx, created.ID, &domain.AdvertisementPatch{Header: strPtr("New")}))

	got, err := repo.GetAdvertisementByID(ctx, created.ID)
	is.NoErr(err)
	is.Equal(got.Header, "New")
	is.Equal(got.Owner, "A")
	is.Equal(got.Description, "D")
	is.True(got.CreationTime.Equal(created.CreationTime))

	// same values again still matches the row
	is.NoErr(repo.UpdateAdvertisement(ctx, created.ID, &domain.AdvertisementPatch{Header: strPtr("New")}))
	is.NoErr(repo.UpdateAdvertisement(ctx, created.ID, &domain.AdvertisementPatch{}))
}

func TestUpdateMissing(t *testing.T) {
	is := is.New(t)
	repo := newTestRepository(t, cache.NewNoopCache())

	err := repo.UpdateAdvertisement(context.TODO(), 999999, &domain.AdvertisementPatch{Header: strPtr("x")})
	is.True(errors.Is(err, sql.ErrNoRows))
}

func TestDelete(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	repo := newTestRepository(t, cache.NewNoopCache())

	created, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "A", Header: "H", Description: "D"})
	is.NoErr(err)

	is.NoErr(repo.DeleteAdvertisement(ctx, created.ID))

	_, err = repo.GetAdvertisementByID(ctx, created.ID)
	is.True(errors.Is(err, sql.ErrNoRows))

	err = repo.DeleteAdvertisement(ctx, created.ID)
	is.True(errors.Is(err, sql.ErrNoRows))
}

func TestCacheIsInvalidatedOnWrite(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	c := cache.NewLRUCache(16, time.Minute)
	repo := newTestRepository(t, c)

	created, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "A", Header: "H", Description: "D"})
	is.NoErr(err)

	_, err = repo.GetAdvertisementByID(ctx, created.ID)
	is.NoErr(err)
	_, err = c.Get(ctx, cacheKey(created.ID))
	is.NoErr(err) // populated by the read

	is.NoErr(repo.UpdateAdvertisement(ctx, created.ID, &domain.AdvertisementPatch{Description: strPtr("D2")}))
	got, err := repo.GetAdvertisementByID(ctx, created.ID)
	is.NoErr(err)
	is.Equal(got.Description, "D2")

	is.NoErr(repo.DeleteAdvertisement(ctx, created.ID))
	_, err = c.Get(ctx, cacheKey(created.ID))
	is.True(errors.Is(err, cache.ErrCacheMiss))
	_, err = repo.GetAdvertisementByID(ctx, created.ID)
	is.True(errors.Is(err, sql.ErrNoRows))
}

// pausedCache holds the first Set until release is closed.
type pausedCache struct {
	cache.Cache

	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newPausedCache(c cache.Cache) *pausedCache {
	return &pausedCache{Cache: c, entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *pausedCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return p.Cache.Set(ctx, key, value, expiration)
}

func TestCacheFillRacingWrite(t *testing.T) {
	for name, write := range map[string]func(repo AdvertisementRepository, id int64) error{
		"delete": func(repo AdvertisementRepository, id int64) error {
			return repo.DeleteAdvertisement(context.TODO(), id)
		},
		"update": func(repo AdvertisementRepository, id int64) error {
			return repo.UpdateAdvertisement(context.TODO(), id, &domain.AdvertisementPatch{Header: strPtr("New")})
		},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			ctx := context.TODO()

			c := newPausedCache(cache.NewLRUCache(16, time.Minute))
			repo := newTestRepository(t, c)

			created, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "A", Header: "H", Description: "D"})
			is.NoErr(err)

			done := make(chan error, 1)
			go func() {
				_, err := repo.GetAdvertisementByID(ctx, created.ID)
				done <- err
			}()

			<-c.entered // the read holds the old row
			is.NoErr(write(repo, created.ID))
			close(c.release)
			is.NoErr(<-done)

			_, err = c.Get(ctx, cacheKey(created.ID))
			is.True(errors.Is(err, cache.ErrCacheMiss)) // stale fill dropped

			got, err := repo.GetAdvertisementByID(ctx, created.ID)
			if name == "delete" {
				is.True(errors.Is(err, sql.ErrNoRows))
				return
			}
			is.NoErr(err)
			is.Equal(got.Header, "New")
		})
	}
}

func TestCreateAfterExplicitID(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	repo := newTestRepository(t, cache.NewNoopCache())

	id := int64(100)
	_, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{ID: &id, Owner: "A", Header: "H", Description: "D"})
	is.NoErr(err)

	next, err := repo.CreateAdvertisement(ctx, &domain.CreateAdvertisement{Owner: "B", Header: "H", Description: "D"})
	is.NoErr(err)
	is.True(next.ID > id)
}

func TestPing(t *testing.T) {
	is := is.New(t)
	repo := newTestRepository(t, cache.NewNoopCache())
	is.NoErr(repo.Ping(context.TODO()))
}
