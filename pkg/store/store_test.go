package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orneryd/huginn/pkg/model"
)

func testModel() *model.Model {
	return &model.Model{
		NumComponents: 1,
		NumFeatures:   2,
		Components:    [][]float64{{1, 0}, {0, 1}},
		Mean:          []float64{0.5, -0.5},
		Eigenvalues:   []float64{2, 1},
	}
}

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegistry_PutGet(t *testing.T) {
	reg := openTestRegistry(t)

	m := testModel()
	id, err := reg.Put(m)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, m.ID)
	require.False(t, m.CreatedAt.IsZero())

	got, err := reg.Get(id)
	require.NoError(t, err)
	require.Equal(t, m.Components, got.Components)
	require.Equal(t, m.Mean, got.Mean)
	require.Equal(t, m.Eigenvalues, got.Eigenvalues)

	// The stored model revives into a working reducer.
	r, err := got.ToReducer()
	require.NoError(t, err)
	require.True(t, r.IsFitted())
}

func TestRegistry_PutKeepsExistingID(t *testing.T) {
	reg := openTestRegistry(t)

	m := testModel()
	m.ID = "fixed-id"
	m.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := reg.Put(m)
	require.NoError(t, err)
	require.Equal(t, "fixed-id", id)

	got, err := reg.Get("fixed-id")
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(m.CreatedAt))
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := openTestRegistry(t)

	_, err := reg.Get("does-not-exist")
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistry_List(t *testing.T) {
	reg := openTestRegistry(t)

	infos, err := reg.List()
	require.NoError(t, err)
	require.Empty(t, infos)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := reg.Put(testModel())
		require.NoError(t, err)
		ids[id] = true
	}

	infos, err = reg.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	for _, info := range infos {
		require.True(t, ids[info.ID])
		require.Equal(t, 1, info.NumComponents)
		require.Equal(t, 2, info.NumFeatures)
	}
}

func TestRegistry_Delete(t *testing.T) {
	reg := openTestRegistry(t)

	id, err := reg.Put(testModel())
	require.NoError(t, err)

	require.NoError(t, reg.Delete(id))
	_, err = reg.Get(id)
	require.ErrorIs(t, err, ErrModelNotFound)

	require.ErrorIs(t, reg.Delete(id), ErrModelNotFound)
}

func TestRegistry_Closed(t *testing.T) {
	reg, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close()) // idempotent

	_, err = reg.Put(testModel())
	require.ErrorIs(t, err, ErrClosed)
	_, err = reg.Get("x")
	require.ErrorIs(t, err, ErrClosed)
	_, err = reg.List()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, reg.Delete("x"), ErrClosed)
}

func TestRegistry_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	reg, err := Open(dir)
	require.NoError(t, err)
	id, err := reg.Put(testModel())
	require.NoError(t, err)
	require.NoError(t, reg.Close())

	reg2, err := Open(dir)
	require.NoError(t, err)
	defer reg2.Close()

	got, err := reg2.Get(id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
}
