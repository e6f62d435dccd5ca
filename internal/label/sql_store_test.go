package label_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/label"
)

func TestSQLStoreGetUpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := label.NewSQLStore(ctx, "sqlite", ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.GetContext(ctx, 0)
	require.NoError(t, err)
	require.False(t, ok)

	guidance := "watch for new members joining rapidly"
	require.NoError(t, store.UpsertContext(ctx, label.Record{
		CategoryID:   0,
		Handle:       "connected-clustered-trust-cluster-0",
		Gloss:        "Densely interacting agents.",
		Guidance:     &guidance,
		SnapshotTime: 10,
	}))

	rec, ok, err := store.GetContext(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "connected-clustered-trust-cluster-0", rec.Handle)
	require.NotNil(t, rec.Guidance)
	require.Equal(t, guidance, *rec.Guidance)

	require.NoError(t, store.UpsertContext(ctx, label.Record{
		CategoryID:   0,
		Handle:       "peripheral-diffuse-trust-cluster-0",
		Gloss:        "Sparse agents.",
		SnapshotTime: 20,
	}))
	rec, ok, err = store.GetContext(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "peripheral-diffuse-trust-cluster-0", rec.Handle)
	require.Nil(t, rec.Guidance)
}
