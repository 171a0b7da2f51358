// internal/services/store.go
package services

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Promethia/CampaignForge/internal/models"
)

// ConversationStore holds one ConversationRecord per user identifier.
// Records are in-memory only; idle conversations expire after maxAge
// and any record is gone on process restart.
type ConversationStore struct {
	records *gocache.Cache
}

// NewConversationStore creates a store whose records expire after
// maxAge of inactivity
func NewConversationStore(maxAge time.Duration) *ConversationStore {
	if maxAge <= 0 {
		maxAge = 10 * time.Hour
	}
	return &ConversationStore{
		records: gocache.New(maxAge, maxAge/4),
	}
}

// Get returns the record for userID, or nil when none exists
func (s *ConversationStore) Get(userID string) *models.ConversationRecord {
	if value, found := s.records.Get(userID); found {
		return value.(*models.ConversationRecord)
	}
	return nil
}

// GetOrCreate returns the record for userID, creating a fresh one in
// the initial phase on first contact. The second return reports whether
// the record was just created.
func (s *ConversationStore) GetOrCreate(userID string) (*models.ConversationRecord, bool) {
	if record := s.Get(userID); record != nil {
		return record, false
	}
	record := models.NewConversationRecord(userID)
	s.records.SetDefault(userID, record)
	return record, true
}

// Put stores the record and refreshes its expiry
func (s *ConversationStore) Put(record *models.ConversationRecord) {
	s.records.SetDefault(record.UserID, record)
}

// Delete removes the record for userID
func (s *ConversationStore) Delete(userID string) {
	s.records.Delete(userID)
}

// Count returns the number of live conversations
func (s *ConversationStore) Count() int {
	return s.records.ItemCount()
}
