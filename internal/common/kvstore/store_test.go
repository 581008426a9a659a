package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"registration-pipeline/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func setupMockDB(t *testing.T) (*PostgresClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := NewPostgresFromDB(db, "kv_store")
	require.NoError(t, err)
	return client, mock
}

// ==========================
// Memory
// ==========================

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, found, err := store.Get(ctx, "registrations")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "registrations", "[]"))

	val, found, err := store.Get(ctx, "registrations")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", val)
}

// ==========================
// Redis
// ==========================

func TestRedisClient_GetSet(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)

	_, found, err := client.Get(ctx, "registrations")
	require.NoError(t, err)
	assert.False(t, found, "absent key is not an error")

	require.NoError(t, client.Set(ctx, "registrations", `[{"name":"Jo"}]`))

	raw, err := mr.Get("registrations")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Jo"}]`, raw)
	assert.Zero(t, mr.TTL("registrations"), "values never expire")

	val, found, err := client.Get(ctx, "registrations")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"name":"Jo"}]`, val)
}

func TestRedisClient_Errors(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb)

	mock.ExpectGet("registrations").SetErr(errors.New("connection reset"))
	_, _, err := client.Get(ctx, "registrations")
	assert.ErrorContains(t, err, "connection reset")

	mock.ExpectSet("registrations", "[]", 0).SetErr(errors.New("OOM command not allowed"))
	err = client.Set(ctx, "registrations", "[]")
	assert.ErrorContains(t, err, "OOM")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Postgres
// ==========================

func TestPostgresClient_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT value FROM kv_store WHERE key = \$1`).
			WithArgs("registrations").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))

		val, found, err := client.Get(ctx, "registrations")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "[]", val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent", func(t *testing.T) {
		client, mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT value FROM kv_store`).
			WithArgs("registrations").
			WillReturnError(sql.ErrNoRows)

		_, found, err := client.Get(ctx, "registrations")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("query error", func(t *testing.T) {
		client, mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT value FROM kv_store`).
			WithArgs("registrations").
			WillReturnError(errors.New("connection refused"))

		_, _, err := client.Get(ctx, "registrations")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestPostgresClient_SetUpserts(t *testing.T) {
	ctx := context.Background()
	client, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO kv_store .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("registrations", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, client.Set(ctx, "registrations", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_EnsureSchema(t *testing.T) {
	client, mock := setupMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresFromDB_RejectsUnsafeTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewPostgresFromDB(db, "kv; DROP TABLE users")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		store, err := Open(ctx, config.StoreConfig{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		store, err := Open(ctx, config.StoreConfig{
			Backend: config.StoreBackendRedis,
			Redis:   config.RedisConfig{Address: mr.Addr()},
		})
		require.NoError(t, err)
		defer store.(Closer).Close()
		assert.IsType(t, &RedisClient{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(ctx, config.StoreConfig{Backend: "etcd"})
		assert.Error(t, err)
	})
}
