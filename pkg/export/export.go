// Package export renders schedules for planners: JSON for APIs, CSV for
// spreadsheets, xlsx for the weekly planning meeting.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"maintenance-scheduler/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s model.Schedule) error {
	enc := json.NewEncoder(w)
	return enc.Encode(s)
}

// WriteCSV writes the schedule to w with one row per assignment.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"work_order_id", "resource_id", "date", "day_offset"}); err != nil {
		return err
	}
	for _, a := range s.Assignments {
		rec := []string{
			a.WorkOrderID,
			a.ResourceID,
			s.Date(a).String(),
			strconv.Itoa(a.DayOffset),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Schedule"

// WriteXLSX writes the schedule to w as a workbook, one row per assignment.
func WriteXLSX(w io.Writer, s model.Schedule) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	header := []any{"Work Order", "Resource", "Date", "Day Offset"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, a := range s.Assignments {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{a.WorkOrderID, a.ResourceID, s.Date(a).String(), a.DayOffset}
		if err := f.SetSheetRow(sheetName, cellRef, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
