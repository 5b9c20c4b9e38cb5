package model

import (
	"fmt"
	"time"
)

// Crew is the single maintenance crew for a trade, with its weekly working
// pattern. Trades are unique within a registry.
type Crew struct {
	Trade              string `json:"trade"`
	ShiftDurationHours int    `json:"shift_duration_hours"`
	TechniciansPerCrew int    `json:"technicians_per_crew"`
	Monday             bool   `json:"monday"`
	Tuesday            bool   `json:"tuesday"`
	Wednesday          bool   `json:"wednesday"`
	Thursday           bool   `json:"thursday"`
	Friday             bool   `json:"friday"`
	Saturday           bool   `json:"saturday"`
	Sunday             bool   `json:"sunday"`
}

// DailyCapacity is the person-hour budget of the crew for one active day.
func (c Crew) DailyCapacity() int { return c.ShiftDurationHours * c.TechniciansPerCrew }

// ActiveOn reports whether the crew works on the given weekday.
func (c Crew) ActiveOn(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	case time.Saturday:
		return c.Saturday
	case time.Sunday:
		return c.Sunday
	}
	return false
}

// ActiveDays lists the crew's working weekdays starting from Monday.
func (c Crew) ActiveDays() []time.Weekday {
	week := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var days []time.Weekday
	for _, d := range week {
		if c.ActiveOn(d) {
			days = append(days, d)
		}
	}
	return days
}

// Validate checks that the crew definition is usable by the scheduler.
func (c Crew) Validate() error {
	if c.Trade == "" {
		return fmt.Errorf("crew trade is required")
	}
	if c.ShiftDurationHours < 1 {
		return fmt.Errorf("crew %s: shift duration must be at least one hour", c.Trade)
	}
	if c.TechniciansPerCrew < 1 {
		return fmt.Errorf("crew %s: technician count must be at least one", c.Trade)
	}
	if len(c.ActiveDays()) == 0 {
		return fmt.Errorf("crew %s: no active weekday", c.Trade)
	}
	return nil
}
