package taskcache

import (
	"strings"

	"taskdash/internal/service"
)

// Filter returns the cached tasks matching status and text. It makes no
// network call and leaves the cache untouched.
func (c *Cache) Filter(status service.Status, text string) []service.Task {
	return FilterTasks(c.Tasks(), status, text)
}

// FilterTasks keeps tasks whose status equals status (any status for
// StatusAll or "") and whose title or description contains text,
// case-insensitively. The result is a new slice in input order.
func FilterTasks(tasks []service.Task, status service.Status, text string) []service.Task {
	needle := strings.ToLower(text)
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if status != service.StatusAll && status != "" && t.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		result = append(result, t)
	}
	return result
}
