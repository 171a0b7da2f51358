// internal/services/store_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promethia/CampaignForge/internal/models"
)

func TestStoreGetOrCreate(t *testing.T) {
	store := NewConversationStore(time.Hour)

	record, created := store.GetOrCreate("u1")
	require.NotNil(t, record)
	assert.True(t, created)
	assert.Equal(t, models.PhaseCollectingContext, record.Phase)

	again, created := store.GetOrCreate("u1")
	assert.False(t, created)
	assert.Equal(t, record.UserID, again.UserID)
}

func TestStorePutGetDelete(t *testing.T) {
	store := NewConversationStore(time.Hour)

	record := models.NewConversationRecord("u2")
	record.Context.ProductDetails = "Coffee beans"
	store.Put(record)

	got := store.Get("u2")
	require.NotNil(t, got)
	assert.Equal(t, "Coffee beans", got.Context.ProductDetails)
	assert.Equal(t, 1, store.Count())

	store.Delete("u2")
	assert.Nil(t, store.Get("u2"))
	assert.Equal(t, 0, store.Count())
}

func TestStoreExpiresStaleConversations(t *testing.T) {
	store := NewConversationStore(50 * time.Millisecond)

	store.Put(models.NewConversationRecord("stale"))
	require.NotNil(t, store.Get("stale"))

	time.Sleep(80 * time.Millisecond)
	assert.Nil(t, store.Get("stale"))
}
