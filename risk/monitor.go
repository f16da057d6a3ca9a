package risk

import (
	"sync"
	"time"
)

// Event is emitted when a rule starts firing.
type Event struct {
	Rule Rule      `json:"rule"`
	Msg  string    `json:"msg"`
	Date string    `json:"date"`
	At   time.Time `json:"at"`
}

// Monitor turns decisions into events, once per crossing: a rule that
// keeps firing stays quiet until it clears and fires again. A new date
// clears every rule.
type Monitor struct {
	mu     sync.Mutex
	now    func() time.Time
	date   string
	firing map[Rule]bool
}

func NewMonitor(now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{now: now, firing: map[Rule]bool{}}
}

// Check evaluates the policy and returns the new events.
func (m *Monitor) Check(p Policy, s Snapshot) []Event {
	return m.Observe(s.Date, Evaluate(p, s))
}

func (m *Monitor) Observe(date string, d Decision) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if date != m.date {
		m.date = date
		m.firing = map[Rule]bool{}
	}

	var events []Event
	for _, rule := range Rules {
		fired := d.Fired(rule)
		if fired && !m.firing[rule] {
			for _, v := range d.Violations {
				if v.Code == rule {
					events = append(events, Event{Rule: rule, Msg: v.Msg, Date: date, At: m.now()})
					break
				}
			}
		}
		m.firing[rule] = fired
	}
	return events
}

// Firing reports the rules currently in a fired state.
func (m *Monitor) Firing() []Rule {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Rule
	for _, rule := range Rules {
		if m.firing[rule] {
			out = append(out, rule)
		}
	}
	return out
}

// Reset forgets every fired state.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.firing = map[Rule]bool{}
}
