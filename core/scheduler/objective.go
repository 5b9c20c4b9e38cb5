package scheduler

import (
	"fmt"

	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/solver"
)

// urgency is the objective value of running wo on day offset d. Earlier days
// are worth more so urgent work lands at the front of the week.
func urgency(g Gains, wo model.WorkOrder, d int) float64 {
	return score(g, wo) * float64(model.HorizonDays-d)
}

// score is the day-independent urgency of a work order: older, higher
// priority, safety-relevant and preventive work scores higher.
func score(g Gains, wo model.WorkOrder) float64 {
	s := float64(wo.AgeDays)*g.Age + float64(5-wo.Priority)*g.Priority
	if wo.Safety {
		s += g.Safety
	}
	if wo.IsPreventive() {
		s += g.Type
	}
	return s
}

// addLoadBalance rewards keeping crew-days lightly loaded. Each active
// crew-day contributes gain * (cap^2 - load^2) / cap^2, which is one when the
// day is idle and zero at full load. The quadratic is concave, so it is
// modeled exactly at integer loads by an auxiliary variable kept under one
// secant cut per unit step. Days whose load is fully determined by pins
// contribute as constants.
func addLoadBalance(g Gains, m *solver.Model, crews []model.Crew, active [][]bool, fixedLoad [][]int, capTerms [][][]solver.Term) {
	if g.LoadBalance == 0 {
		return
	}
	for ci, c := range crews {
		cap := c.DailyCapacity()
		capSq := float64(cap * cap)
		for d := 0; d < model.HorizonDays; d++ {
			if !active[ci][d] {
				continue
			}
			fixed := fixedLoad[ci][d]
			terms := capTerms[ci][d]
			if len(terms) == 0 {
				m.AddOffset(g.LoadBalance * balance(capSq, fixed))
				continue
			}

			// load = fixed + sum(demand * x) over the day's candidates.
			load := m.AddVar(float64(fixed), float64(cap), true, fmt.Sprintf("load[%s@%d]", c.Trade, d))
			eq := make([]solver.Term, 0, len(terms)+1)
			eq = append(eq, solver.Term{Var: load, Coef: 1})
			for _, t := range terms {
				eq = append(eq, solver.Term{Var: t.Var, Coef: -t.Coef})
			}
			m.AddEq(eq, float64(fixed))

			z := m.AddVar(0, balance(capSq, fixed), false, fmt.Sprintf("bal[%s@%d]", c.Trade, d))
			for k := fixed; k < cap; k++ {
				slope := balance(capSq, k+1) - balance(capSq, k)
				m.AddLe([]solver.Term{{Var: z, Coef: 1}, {Var: load, Coef: -slope}},
					balance(capSq, k)-slope*float64(k))
			}
			m.AddObjective(z, g.LoadBalance)
		}
	}
}

// balance is (cap^2 - v^2) / cap^2.
func balance(capSq float64, v int) float64 {
	return (capSq - float64(v*v)) / capSq
}
