// Package analytics computes summary statistics over a user's lab records.
// Everything here is pure; callers pass the reference time explicitly.
package analytics

import (
	"cmp"
	"slices"
	"time"
)

// Entry is the part of a record the aggregator looks at.
type Entry struct {
	Subject   string
	CreatedAt time.Time
}

type SubjectCount struct {
	Subject string
	Count   int
}

type Snapshot struct {
	Total          int
	ThisMonth      int
	ThisWeek       int
	UniqueSubjects int
	BySubject      map[string]int
}

// MonthStart is 00:00 on the first day of now's month, in now's location.
func MonthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// WeekStart is 00:00 on the Sunday that begins now's week, in now's
// location. Sunday itself starts a new week.
func WeekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

// Compute aggregates entries relative to now. Records dated in the future
// count toward both windows.
func Compute(entries []Entry, now time.Time) Snapshot {
	month, week := MonthStart(now), WeekStart(now)

	s := Snapshot{Total: len(entries), BySubject: make(map[string]int)}
	for _, e := range entries {
		if !e.CreatedAt.Before(month) {
			s.ThisMonth++
		}
		if !e.CreatedAt.Before(week) {
			s.ThisWeek++
		}
		s.BySubject[e.Subject]++
	}
	s.UniqueSubjects = len(s.BySubject)
	return s
}

// Breakdown lists BySubject by count descending, ties by subject ascending.
func (s Snapshot) Breakdown() []SubjectCount {
	out := make([]SubjectCount, 0, len(s.BySubject))
	for subj, n := range s.BySubject {
		out = append(out, SubjectCount{Subject: subj, Count: n})
	}
	slices.SortFunc(out, func(a, b SubjectCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Subject, b.Subject)
	})
	return out
}
