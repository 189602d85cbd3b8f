package models

import "time"

type Reminder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TaskID       uint       `gorm:"not null;index" json:"task_id"`
	UserID       uint       `gorm:"not null" json:"user_id"`
	EveryMinutes int        `gorm:"not null" json:"every_minutes"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	IsEnabled    bool       `gorm:"not null;default:true" json:"is_enabled"`
	NextRunAt    *time.Time `gorm:"index:idx_reminder_next_run" json:"next_run_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// NextRun computes the next fire time from start (or now when start is nil)
// plus the repeat interval. Recomputed whenever either input changes.
func (r Reminder) NextRun(now time.Time) time.Time {
	base := now
	if r.StartAt != nil {
		base = *r.StartAt
	}
	return base.Add(time.Duration(r.EveryMinutes) * time.Minute)
}
