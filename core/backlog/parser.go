// Package backlog reads work-order backlogs from EAM workbook exports.
package backlog

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"maintenance-scheduler/core/logger"
	"maintenance-scheduler/core/model"
)

// Column headers of the EAM backlog export, matched case-insensitively.
const (
	colID         = "work order"
	colDesc       = "description"
	colDuration   = "estimated hs"
	colPriority   = "priority"
	colSchedDate  = "sched. start date"
	colTrade      = "trade"
	colType       = "type"
	colSafety     = "safety"
	colClass      = "class"
	colCreated    = "date created"
	colPeople     = "persons required"
	colEquipment  = "equipment"
	colDepartment = "department"
	colStatus     = "status"
)

// statusSchedulable is the only EAM status eligible for scheduling.
const statusSchedulable = "Open - Ready to Schedule"

// dateLayouts covers the formats seen in EAM exports; cells already arrive
// as formatted strings.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/2006",
	"1/2/06 15:04",
	"2006/01/02",
}

// Options tune a Parse run.
type Options struct {
	// Start is the horizon start. Rows scheduled outside
	// [Start, Start+7d) are dropped; a zero Start disables the filter.
	Start model.Date
	// Now anchors age computation. Zero means time.Now().
	Now time.Time
	Log logger.Logger
}

// Parse reads an EAM backlog workbook from r. The first sheet must carry a
// header row with at least the work order and trade columns; everything else
// degrades gracefully per cell. Row order is preserved.
func Parse(r io.Reader, opts Options) ([]model.WorkOrder, error) {
	log := opts.Log
	if log == nil {
		log = logger.NopLogger{}
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheets[0])
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colID, colTrade} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	_, filterStatus := cols[colStatus]
	var (
		orders  []model.WorkOrder
		skipped int
	)
	for ri, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		id := cell(row, colID)
		trade := cell(row, colTrade)
		if id == "" || trade == "" {
			skipped++
			log.Debugf("row %d: missing work order id or trade, skipped", ri+2)
			continue
		}
		if filterStatus && !strings.EqualFold(cell(row, colStatus), statusSchedulable) {
			continue
		}

		typ := cell(row, colType)
		if strings.EqualFold(typ, model.TypePreventive) {
			typ = model.TypePreventive
		}
		safety := isTruthy(cell(row, colSafety)) || strings.EqualFold(cell(row, colClass), "EHS")

		var sched model.Date
		if raw := cell(row, colSchedDate); raw != "" {
			d, ok := parseDate(raw)
			if !ok {
				log.Debugf("work order %s: unparseable schedule date %q, ignored", id, raw)
			} else {
				sched = d
			}
		}
		if !sched.IsZero() && !opts.Start.IsZero() {
			off := opts.Start.DaysUntil(sched)
			if off < 0 || off >= model.HorizonDays {
				log.Debugf("work order %s: scheduled %s outside horizon, dropped", id, sched)
				continue
			}
		}

		age := 0
		if created, ok := parseDate(cell(row, colCreated)); ok {
			if d := int(now.Sub(created.Time()).Hours() / 24); d > 0 {
				age = d
			}
		}

		orders = append(orders, model.WorkOrder{
			ID:            id,
			Description:   cell(row, colDesc),
			Trade:         trade,
			Type:          typ,
			DurationHours: parseHours(cell(row, colDuration)),
			NumPeople:     parseCount(cell(row, colPeople)),
			Priority:      mapPriority(cell(row, colPriority), typ == model.TypePreventive, safety),
			Safety:        safety,
			AgeDays:       age,
			Fixed:         typ == model.TypePreventive && safety,
			ScheduleDate:  sched,
			Equipment:     cell(row, colEquipment),
			Department:    cell(row, colDepartment),
		})
	}
	log.Debugf("parsed %d work orders, %d rows skipped", len(orders), skipped)
	return orders, nil
}

// mapPriority folds the EAM priority cell onto the 1 (urgent) to 5 (routine)
// scale. Preventive work is always 1, safety work 2; anything else takes the
// first digit of the cell plus two, clamped to 5.
func mapPriority(raw string, preventive, safety bool) int {
	if preventive {
		return 1
	}
	if safety {
		return 2
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			p := int(r-'0') + 2
			if p > 5 {
				p = 5
			}
			return p
		}
	}
	return 5
}

// parseHours reads an estimated-hours cell. Jobs shorter than an hour count
// as one hour.
func parseHours(raw string) int {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v <= 1 {
		return 1
	}
	return int(math.Round(v))
}

// parseCount reads a persons-required cell, defaulting to a single tech.
func parseCount(raw string) int {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 1 {
		return 1
	}
	return int(math.Round(v))
}

func parseDate(raw string) (model.Date, bool) {
	if raw == "" {
		return model.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}
