package scheduler

import (
	"fmt"

	"maintenance-scheduler/core/logger"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/solver"
)

// slotVar ties one boolean decision variable to its work order, crew and day.
type slotVar struct {
	wo   int
	crew int
	day  int
	id   solver.VarID
}

type builtModel struct {
	m       *solver.Model
	vars    []slotVar
	pinned  []model.Assignment
	dropped []string
}

// buildModel translates work orders and crews into an integer program.
// Fixed work orders become constants: they consume capacity on their pinned
// day and contribute their urgency as an objective offset. Every remaining
// order gets one boolean per crew-day where the trade matches, the crew is
// active and the whole job still fits in the day's free budget.
func buildModel(cfg Config, log logger.Logger, orders []model.WorkOrder, crews []model.Crew, start model.Date) *builtModel {
	m := solver.NewModel()
	b := &builtModel{m: m}

	crewIdx := make(map[string]int, len(crews))
	for i, c := range crews {
		crewIdx[c.Trade] = i
	}

	active := make([][]bool, len(crews))
	for ci, c := range crews {
		active[ci] = make([]bool, model.HorizonDays)
		for d := 0; d < model.HorizonDays; d++ {
			active[ci][d] = c.ActiveOn(start.AddDays(d).Weekday())
		}
	}

	// Person-hours committed by pinned work per crew-day.
	fixedLoad := make([][]int, len(crews))
	for ci := range fixedLoad {
		fixedLoad[ci] = make([]int, model.HorizonDays)
	}

	handled := make([]bool, len(orders))
	for wi, wo := range orders {
		if !wo.Fixed || wo.ScheduleDate.IsZero() {
			continue
		}
		handled[wi] = true
		d := start.DaysUntil(wo.ScheduleDate)
		if d < 0 || d >= model.HorizonDays {
			log.Debugf("work order %s: fixed date %s outside horizon, dropped", wo.ID, wo.ScheduleDate)
			b.dropped = append(b.dropped, wo.ID)
			continue
		}
		ci, ok := crewIdx[wo.Trade]
		if !ok {
			log.Debugf("work order %s: no crew for trade %s, dropped", wo.ID, wo.Trade)
			b.dropped = append(b.dropped, wo.ID)
			continue
		}
		if !active[ci][d] {
			log.Debugf("work order %s: crew %s is off on fixed date %s, dropped", wo.ID, wo.Trade, wo.ScheduleDate)
			b.dropped = append(b.dropped, wo.ID)
			continue
		}
		// Pins may exceed nominal capacity; the free budget floors at zero.
		fixedLoad[ci][d] += wo.Demand()
		b.pinned = append(b.pinned, model.Assignment{WorkOrderID: wo.ID, DayOffset: d, ResourceID: wo.Trade})
		m.AddOffset(urgency(cfg.Gains, wo, d))
	}

	budget := make([][]int, len(crews))
	for ci, c := range crews {
		budget[ci] = make([]int, model.HorizonDays)
		for d := range budget[ci] {
			free := c.DailyCapacity() - fixedLoad[ci][d]
			if free < 0 {
				free = 0
			}
			budget[ci][d] = free
		}
	}

	capTerms := make([][][]solver.Term, len(crews))
	for ci := range capTerms {
		capTerms[ci] = make([][]solver.Term, model.HorizonDays)
	}
	woTerms := make([][]solver.Term, len(orders))
	for ci, c := range crews {
		for d := 0; d < model.HorizonDays; d++ {
			if !active[ci][d] || budget[ci][d] == 0 {
				continue
			}
			for wi, wo := range orders {
				if handled[wi] || wo.Trade != c.Trade || wo.Demand() > budget[ci][d] {
					continue
				}
				id := m.AddBool(fmt.Sprintf("%s@%d", wo.ID, d))
				b.vars = append(b.vars, slotVar{wo: wi, crew: ci, day: d, id: id})
				capTerms[ci][d] = append(capTerms[ci][d], solver.Term{Var: id, Coef: float64(wo.Demand())})
				woTerms[wi] = append(woTerms[wi], solver.Term{Var: id, Coef: 1})
				m.AddObjective(id, urgency(cfg.Gains, wo, d))
			}
		}
	}

	for wi, wo := range orders {
		if handled[wi] || len(woTerms[wi]) > 0 {
			continue
		}
		if _, ok := crewIdx[wo.Trade]; !ok {
			log.Debugf("work order %s: no crew for trade %s, dropped", wo.ID, wo.Trade)
		} else {
			log.Debugf("work order %s: no crew-day can take %d person-hours, dropped", wo.ID, wo.Demand())
		}
		b.dropped = append(b.dropped, wo.ID)
	}

	for ci := range crews {
		for d := 0; d < model.HorizonDays; d++ {
			if len(capTerms[ci][d]) == 0 {
				continue
			}
			m.AddLe(capTerms[ci][d], float64(budget[ci][d]))
		}
	}
	for wi := range orders {
		if len(woTerms[wi]) > 0 {
			m.AddLe(woTerms[wi], 1)
		}
	}

	addLoadBalance(cfg.Gains, m, crews, active, fixedLoad, capTerms)
	return b
}
