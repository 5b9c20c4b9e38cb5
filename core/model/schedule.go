package model

import "sort"

// HorizonDays is the fixed planning window length. Schedules always cover one
// week starting on a Monday.
const HorizonDays = 7

// Assignment places one work order on one crew-day slot.
type Assignment struct {
	WorkOrderID string `json:"work_order_id"`
	DayOffset   int    `json:"day_offset"` // 0 = start date, 6 = last day
	ResourceID  string `json:"resource_id"`
}

// Schedule is the optimizer output for one planning week.
type Schedule struct {
	StartDate   Date         `json:"start_date"`
	HorizonDays int          `json:"horizon_days"`
	Assignments []Assignment `json:"assignments"`
}

// NewSchedule returns an empty schedule for the week starting at start.
func NewSchedule(start Date) Schedule {
	return Schedule{StartDate: start, HorizonDays: HorizonDays, Assignments: []Assignment{}}
}

// Date resolves an assignment's day offset to its calendar date.
func (s Schedule) Date(a Assignment) Date {
	return s.StartDate.AddDays(a.DayOffset)
}

// Sort orders assignments by day, then resource, then work order id so equal
// inputs always serialize identically.
func (s *Schedule) Sort() {
	sort.SliceStable(s.Assignments, func(i, j int) bool {
		a, b := s.Assignments[i], s.Assignments[j]
		if a.DayOffset != b.DayOffset {
			return a.DayOffset < b.DayOffset
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		return a.WorkOrderID < b.WorkOrderID
	})
}

// CalendarEvent is a single all-day entry for calendar front ends.
type CalendarEvent struct {
	Title      string `json:"title"`
	ResourceID string `json:"resource_id"`
	Start      Date   `json:"start"`
	End        Date   `json:"end"`
}

// CalendarEvents expands the schedule into all-day events, one per
// assignment, with an exclusive end date.
func (s Schedule) CalendarEvents() []CalendarEvent {
	events := make([]CalendarEvent, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		start := s.Date(a)
		events = append(events, CalendarEvent{
			Title:      a.WorkOrderID,
			ResourceID: a.ResourceID,
			Start:      start,
			End:        start.AddDays(1),
		})
	}
	return events
}
