// Package scenarios provides a YAML-driven regression harness for the
// scheduling optimizer. Each scenario file describes a crew roster, a
// work-order backlog and the schedule the solver is expected to produce;
// the harness runs the real optimizer and compares.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"maintenance-scheduler/core/model"
)

// start is the week every scenario is solved against. A fixed Monday keeps
// day indices in the YAML stable regardless of when the suite runs.
var start = model.NewDate(2025, time.March, 3)

// CrewDef declares a crew in scenario YAML.
type CrewDef struct {
	Trade       string   `yaml:"trade"`
	ShiftHours  int      `yaml:"shift_hours"`
	Technicians int      `yaml:"technicians"`
	Days        []string `yaml:"days"`
}

// ToModel converts the definition to a model.Crew.
func (c CrewDef) ToModel() (model.Crew, error) {
	crew := model.Crew{
		Trade:              c.Trade,
		ShiftDurationHours: c.ShiftHours,
		TechniciansPerCrew: c.Technicians,
	}
	for _, d := range c.Days {
		switch d {
		case "mon":
			crew.Monday = true
		case "tue":
			crew.Tuesday = true
		case "wed":
			crew.Wednesday = true
		case "thu":
			crew.Thursday = true
		case "fri":
			crew.Friday = true
		case "sat":
			crew.Saturday = true
		case "sun":
			crew.Sunday = true
		default:
			return model.Crew{}, fmt.Errorf("crew %s: unknown day %q", c.Trade, d)
		}
	}
	return crew, nil
}

// WorkOrderDef declares a backlog entry in scenario YAML.
type WorkOrderDef struct {
	ID       string `yaml:"id"`
	Trade    string `yaml:"trade"`
	Type     string `yaml:"type"`
	Hours    int    `yaml:"hours"`
	People   int    `yaml:"people"`
	Priority int    `yaml:"priority"`
	Safety   bool   `yaml:"safety"`
	AgeDays  int    `yaml:"age_days"`
	// PinDay fixes the order to a day offset within the week.
	PinDay *int `yaml:"pin_day"`
}

// ToModel converts the definition to a model.WorkOrder, resolving pins
// against the scenario start date.
func (w WorkOrderDef) ToModel() model.WorkOrder {
	wo := model.WorkOrder{
		ID:            w.ID,
		Trade:         w.Trade,
		Type:          w.Type,
		DurationHours: w.Hours,
		NumPeople:     w.People,
		Priority:      w.Priority,
		Safety:        w.Safety,
		AgeDays:       w.AgeDays,
	}
	if wo.NumPeople == 0 {
		wo.NumPeople = 1
	}
	if w.Type == "preventive" {
		wo.Type = model.TypePreventive
	}
	if w.PinDay != nil {
		wo.Fixed = true
		wo.ScheduleDate = start.AddDays(*w.PinDay)
	}
	return wo
}

// Placement is where an order is expected to land.
type Placement struct {
	Day      int    `yaml:"day"`
	Resource string `yaml:"resource"`
}

// Expected captures the asserted solver outcome.
type Expected struct {
	Status     string               `yaml:"status"`
	Assigned   int                  `yaml:"assigned"`
	Unassigned int                  `yaml:"unassigned"`
	Dropped    []string             `yaml:"dropped"`
	Placements map[string]Placement `yaml:"placements"`
}

// Scenario is one YAML regression case.
type Scenario struct {
	Name       string         `yaml:"name"`
	Crews      []CrewDef      `yaml:"crews"`
	WorkOrders []WorkOrderDef `yaml:"work_orders"`
	Expected   Expected       `yaml:"expected"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}
