package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used by the remote document-store adapter.
type JobModel struct {
	ID              string `gorm:"primaryKey"`
	Title           string `gorm:"not null"`
	Company         string `gorm:"not null"`
	Location        string
	Salary          int64
	Description     string         `gorm:"type:text"`
	LongDescription string         `gorm:"type:text"`
	Requirements    datatypes.JSON `gorm:"type:jsonb"`
	ContactInfo     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null"`
}

type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	Admin        bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// BookmarkModel holds one saved job per row. Snapshot is null in
// reference mode and carries the full job copy in snapshot mode.
type BookmarkModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	JobID     string `gorm:"not null;index"`
	Snapshot  datatypes.JSON
	CreatedAt time.Time `gorm:"not null"`
}
