package stubs

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptorium/internal/filestore"
)

func TestMockStore_ListTextsEmpty(t *testing.T) {
	store := NewMockStore()

	_, err := store.ListTexts(context.Background())
	assert.ErrorIs(t, err, filestore.ErrNoTexts)
}

func TestMockStore_ListTextsSorted(t *testing.T) {
	store := NewMockStore()
	store.AddText("2", "b.txt", "second")
	store.AddText("1", "a.txt", "first")

	texts, err := store.ListTexts(context.Background())
	require.NoError(t, err)
	require.Len(t, texts, 2)
	assert.Equal(t, "a.txt", texts[0].Name)
	assert.Equal(t, "b.txt", texts[1].Name)
}

func TestMockStore_Fetch(t *testing.T) {
	store := NewMockStore()
	store.AddText("1", "a.txt", "Hello")

	data, err := store.Fetch(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), data)
}

func TestMockStore_CountMatching(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.SavePhoto(ctx, "abc123_1.jpg", bytes.NewReader([]byte("x"))))
	require.NoError(t, store.SavePhoto(ctx, "abc123_2.jpg", bytes.NewReader([]byte("y"))))
	require.NoError(t, store.SavePhoto(ctx, "other_1.jpg", bytes.NewReader([]byte("z"))))

	count, err := store.CountMatching(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountMatching(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
