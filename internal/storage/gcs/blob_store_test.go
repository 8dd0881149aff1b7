package gcs

import (
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "awards"})
	require.Error(t, err)

	_, err = New(&storage.Client{}, Config{})
	require.Error(t, err)
}

func TestObjectPath(t *testing.T) {
	t.Parallel()

	store, err := New(&storage.Client{}, Config{Bucket: "awards", Prefix: "/site/data/"})
	require.NoError(t, err)
	assert.Equal(t, "site/data/awardWinners.json", store.objectPath("awardWinners.json"))
	assert.Equal(t, "site/data/blog/x.mdx", store.objectPath("/blog/x.mdx"))

	bare, err := New(&storage.Client{}, Config{Bucket: "awards"})
	require.NoError(t, err)
	assert.Equal(t, "awardWinners.ts", bare.objectPath("awardWinners.ts"))
}
