// Package session classifies timestamps into active forex market sessions.
package session

import "time"

// Window defines a session's active interval as [Start, End) in minutes
// since local midnight. A window with End <= Start wraps past midnight.
type Window struct {
	Name  string
	Start int
	End   int
}

// Contains reports whether the given minute-of-day falls inside the window
func (w Window) Contains(minute int) bool {
	if w.Start < w.End {
		return minute >= w.Start && minute < w.End
	}
	// Wraps past midnight
	return minute >= w.Start || minute < w.End
}

// Quiet is returned when no session window is active
const Quiet = "Quiet"

// Windows lists the session windows in evaluation order. Output order of
// Classify follows this order, never alphabetical or input order.
// Times are minutes from 00:00 local (IST in the reference deployment):
// Sydney 02:30-10:30, Tokyo 05:30-14:30, London 13:30-22:30,
// New York 18:30-03:30 (crosses midnight).
var Windows = []Window{
	{Name: "Sydney", Start: 150, End: 630},
	{Name: "Tokyo", Start: 330, End: 870},
	{Name: "London", Start: 810, End: 1350},
	{Name: "New York", Start: 1110, End: 210},
}

// Classify returns the sessions active at the wall-clock time of t.
// Overlapping sessions all appear; if none match the result is ["Quiet"].
// Pure function: only the hour and minute of t are consulted.
func Classify(t time.Time) []string {
	minute := t.Hour()*60 + t.Minute()
	return ClassifyMinute(minute)
}

// ClassifyMinute is Classify over a raw minute-of-day in [0, 1440)
func ClassifyMinute(minute int) []string {
	var sessions []string
	for _, w := range Windows {
		if w.Contains(minute) {
			sessions = append(sessions, w.Name)
		}
	}
	if len(sessions) == 0 {
		return []string{Quiet}
	}
	return sessions
}
