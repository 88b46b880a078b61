package rules

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"

	"spendlens/internal/models"
	apperrors "spendlens/pkg/errors"
)

// Store abstracts learned-rule persistence. The categorization logic only
// ever goes through Load and Save; the storage medium is irrelevant to it.
type Store interface {
	Load() (*models.RuleEnvelope, error)
	Save(envelope *models.RuleEnvelope) error
}

// MemoryStore is an in-process Store used in tests and for throwaway sessions
type MemoryStore struct {
	envelope *models.RuleEnvelope
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored envelope, or nil if nothing has been saved
func (m *MemoryStore) Load() (*models.RuleEnvelope, error) {
	return m.envelope, nil
}

// Save stores the envelope
func (m *MemoryStore) Save(envelope *models.RuleEnvelope) error {
	m.envelope = envelope
	return nil
}

var (
	rulesBucket = []byte("category_rules")
	envelopeKey = []byte("envelope")
)

// BoltStore persists the rule envelope as a single JSON document in a bolt
// bucket
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) a bolt-backed rule store at path
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, "open", err).
			WithContext("path", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rulesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, "init", err)
	}

	return &BoltStore{db: db}, nil
}

// Load reads the stored envelope, or returns nil if none exists
func (b *BoltStore) Load() (*models.RuleEnvelope, error) {
	var envelope *models.RuleEnvelope

	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(rulesBucket).Get(envelopeKey)
		if data == nil {
			return nil
		}
		envelope = &models.RuleEnvelope{}
		return json.Unmarshal(data, envelope)
	})
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeStoreUnavailable, "load", err)
	}

	return envelope, nil
}

// Save writes the envelope
func (b *BoltStore) Save(envelope *models.RuleEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeMalformedPayload, "save", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rulesBucket).Put(envelopeKey, data)
	})
	if err != nil {
		return apperrors.StorageError(apperrors.CodeStoreUnavailable, "save", err)
	}

	return nil
}

// Close closes the underlying database
func (b *BoltStore) Close() error {
	return b.db.Close()
}
