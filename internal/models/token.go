package models

import "time"

// StoredToken is one persisted client-state value (bearer token or the
// session snapshot JSON) under its fixed storage key. The value may be
// AES-encrypted at rest when an encryption key is configured.
type StoredToken struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
