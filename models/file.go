package models

import "time"

// File tracks one uploaded attachment. StoragePath points at the on-disk copy;
// deleting the row removes the file best-effort.
type File struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	StoragePath string    `gorm:"type:text;not null" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
