package model

import "fmt"

// TypePreventive is the work order type used by preventive maintenance plans.
const TypePreventive = "Preventive maintenance"

// WorkOrder is a single maintenance job waiting to be scheduled.
type WorkOrder struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	Trade         string `json:"trade"`          // crew trade required to execute the job
	Type          string `json:"type"`           // EAM work order type, e.g. preventive maintenance
	DurationHours int    `json:"duration_hours"` // whole hours, minimum 1
	NumPeople     int    `json:"num_people"`     // technicians required for the full duration
	Priority      int    `json:"priority"`       // 1 (most urgent) to 5 (least urgent)
	Safety        bool   `json:"safety"`
	AgeDays       int    `json:"age_days"`
	Fixed         bool   `json:"fixed"` // pinned to ScheduleDate when it falls in the horizon
	ScheduleDate  Date   `json:"schedule_date"`
	Equipment     string `json:"equipment"`
	Department    string `json:"department"`
}

// Demand is the person-hour footprint of the work order on its assigned day.
func (w WorkOrder) Demand() int { return w.DurationHours * w.NumPeople }

// IsPreventive reports whether the work order belongs to a preventive plan.
func (w WorkOrder) IsPreventive() bool { return w.Type == TypePreventive }

// Validate checks that the work order can be scheduled.
func (w WorkOrder) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("work order id is required")
	}
	if w.Trade == "" {
		return fmt.Errorf("work order %s: trade is required", w.ID)
	}
	if w.DurationHours < 1 {
		return fmt.Errorf("work order %s: duration must be at least one hour", w.ID)
	}
	if w.NumPeople < 1 {
		return fmt.Errorf("work order %s: crew size must be at least one", w.ID)
	}
	if w.Priority < 1 || w.Priority > 5 {
		return fmt.Errorf("work order %s: priority %d outside 1..5", w.ID, w.Priority)
	}
	if w.AgeDays < 0 {
		return fmt.Errorf("work order %s: negative age", w.ID)
	}
	return nil
}
