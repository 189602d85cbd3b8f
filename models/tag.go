package models

import "time"

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tag_user_name" json:"user_id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_tag_user_name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type TaskTag struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TaskID uint `gorm:"not null;uniqueIndex:idx_task_tag" json:"task_id"`
	TagID  uint `gorm:"not null;uniqueIndex:idx_task_tag" json:"tag_id"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag  Tag  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
