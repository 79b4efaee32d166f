package task

import "sort"

// SortByUrgency orders tasks for display: priority descending (urgent first),
// then due date ascending with undated tasks last within their priority tier.
// The sort is stable, so equal tasks keep their fetched order.
func SortByUrgency(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := a.Priority.rank(), b.Priority.rank(); ra != rb {
			return ra > rb
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
}
