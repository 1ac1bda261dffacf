package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestMongo(t *testing.T) (*MongoAdapter, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	adapter := NewMongoAdapter(db)
	require.NoError(t, adapter.CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return adapter, cleanup
}

func TestMongoRead_NotFound(t *testing.T) {
	adapter, cleanup := setupTestMongo(t)
	defer cleanup()

	result, err := adapter.Read(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, result)
}

func TestMongoWriteRead_RoundTrip(t *testing.T) {
	adapter, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	state := sampleState()

	require.NoError(t, adapter.Write(ctx, "guest-1", state))

	result, err := adapter.Read(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, state, result)
}

func TestMongoWrite_UpsertsExistingOwner(t *testing.T) {
	adapter, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, adapter.Write(ctx, "guest-1", sampleState()))

	updated := sampleState()
	updated.Cart.Lines[0].Quantity = 7
	require.NoError(t, adapter.Write(ctx, "guest-1", updated))

	result, err := adapter.Read(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 7, result.Cart.Lines[0].Quantity)
}

func TestMongoDelete(t *testing.T) {
	adapter, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, adapter.Write(ctx, "guest-1", sampleState()))
	require.NoError(t, adapter.Delete(ctx, "guest-1"))

	_, err := adapter.Read(ctx, "guest-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, adapter.Delete(ctx, "guest-1"))
}

func TestMongoOwnersAreIsolated(t *testing.T) {
	adapter, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, adapter.Write(ctx, "guest-1", sampleState()))

	other := sampleState()
	other.Cart.Lines[0].ProductID = 999
	require.NoError(t, adapter.Write(ctx, "guest-2", other))

	first, err := adapter.Read(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, int64(101), first.Cart.Lines[0].ProductID)

	second, err := adapter.Read(ctx, "guest-2")
	require.NoError(t, err)
	assert.Equal(t, int64(999), second.Cart.Lines[0].ProductID)
}
