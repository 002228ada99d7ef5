package models

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority accepts any casing. Empty means Medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityMedium, nil
	}
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q: want High, Medium or Low", s)
}

// Rank orders High=1, Medium=2, Low=3. Anything else sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// SortTasks orders tasks by priority rank, then title using root-locale
// collation, then id so the result does not depend on input order.
func SortTasks(tasks []Task) {
	// a Collator keeps scratch buffers, so one per call
	col := collate.New(language.Und)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if c := col.CompareString(a.Title, b.Title); c != 0 {
			return c < 0
		}
		return a.ID.Hex() < b.ID.Hex()
	})
}
