package models

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type Task struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index:idx_task_user_due" json:"user_id"`
	User                  User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title                 string     `gorm:"size:200;not null" json:"title"`
	Description           string     `gorm:"type:text" json:"description"`
	DueAt                 *time.Time `gorm:"index:idx_task_user_due" json:"due_at"`
	Status                TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	RepeatIntervalMinutes *int       `json:"repeat_interval_minutes"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
