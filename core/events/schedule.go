// Package events defines the in-process events exchanged between the service
// layers.
package events

import (
	"time"

	"maintenance-scheduler/core/model"
)

// ScheduleComputed is published after an optimizer run that produced a usable
// schedule. Subscribers forward it to external systems.
type ScheduleComputed struct {
	RunID       string
	GeneratedAt time.Time
	Schedule    model.Schedule
}
