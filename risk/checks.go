// Package risk watches the running total and the day's result against the
// stop-loss, stop-win and daily-goal thresholds.
package risk

import (
	"fmt"
)

type Rule string

const (
	StopLoss  Rule = "STOP_LOSS"
	StopWin   Rule = "STOP_WIN"
	DailyGoal Rule = "DAILY_GOAL"
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{StopLoss, StopWin, DailyGoal}

type Violation struct {
	Code Rule
	Msg  string
}

type Decision struct {
	Violations []Violation
}

func (d *Decision) add(code Rule, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
}

// Fired reports whether rule is among the violations.
func (d Decision) Fired(rule Rule) bool {
	for _, v := range d.Violations {
		if v.Code == rule {
			return true
		}
	}
	return false
}

// Evaluate checks each rule independently.
func Evaluate(p Policy, s Snapshot) Decision {
	var d Decision

	if p.StopLoss > 0 && s.RunningTotal <= -p.StopLoss {
		d.add(StopLoss, fmt.Sprintf("running total %.2f reached stop loss -%.2f", s.RunningTotal, p.StopLoss))
	}
	if p.StopWin > 0 && s.RunningTotal >= p.StopWin {
		d.add(StopWin, fmt.Sprintf("running total %.2f reached stop win %.2f", s.RunningTotal, p.StopWin))
	}
	if p.DailyGoal > 0 && s.DailyProfitLoss >= p.DailyGoal {
		d.add(DailyGoal, fmt.Sprintf("daily result %.2f met goal %.2f", s.DailyProfitLoss, p.DailyGoal))
	}

	return d
}
