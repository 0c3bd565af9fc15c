package models

import (
	"time"
)

// File is a stored document record. The blob itself lives in the blob store
// under BlobID; the record and the blob are created and destroyed together.
type File struct {
	ID        string      `gorm:"type:text;primaryKey"`
	Name      string      `gorm:"type:text;not null"`
	Extension string      `gorm:"type:text"`
	Type      string      `gorm:"type:text;not null;index"`
	MimeType  string      `gorm:"type:text"`
	Size      int64       `gorm:"not null"`
	OwnerID   string      `gorm:"type:text;not null;index"`
	Owner     User        `gorm:"foreignKey:OwnerID"`
	BlobID    string      `gorm:"type:text;not null"`
	Grants    []FileGrant `gorm:"foreignKey:FileID"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime"`
}

// FileGrant is one entry of a file's authorized-user list. By convention the
// owner's email is never stored here; owner access is implicit.
type FileGrant struct {
	FileID    string    `gorm:"type:text;primaryKey"`
	Email     string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// UserEmails returns the authorized-user list as plain emails, in grant
// order.
func (f *File) UserEmails() []string {
	emails := make([]string, 0, len(f.Grants))
	for _, g := range f.Grants {
		emails = append(emails, g.Email)
	}
	return emails
}
