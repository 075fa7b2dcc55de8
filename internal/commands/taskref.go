package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskdash/internal/service"
)

// TaskRef identifies a task on the command line, either by its position in
// the viewer's task list (as printed by list) or by its server ID.
type TaskRef struct {
	Num int    // 1-based position, 0 when ID is set
	ID  string // server-assigned identifier
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
//   - all digits ("3") → position in the list
//   - "#3" → position as well
//   - anything else → server ID
//
// byID forces the argument to be read as an ID, for numeric IDs.
func ParseTaskRef(args []string, byID bool) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if byID {
		return TaskRef{ID: arg}, nil
	}

	digits := strings.TrimPrefix(arg, "#")
	if isAllDigits(digits) {
		num, err := strconv.Atoi(digits)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %s", digits)
		}
		return TaskRef{Num: num}, nil
	}
	if strings.HasPrefix(arg, "#") {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	return TaskRef{ID: arg}, nil
}

// ParseTaskRefs parses one reference per argument.
func ParseTaskRefs(args []string, byID bool) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}
	refs := make([]TaskRef, 0, len(args))
	for _, arg := range args {
		ref, err := ParseTaskRef([]string{arg}, byID)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// String formats the reference the way the user would type it.
func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// Resolve finds the referenced task in tasks.
func (r TaskRef) Resolve(tasks []service.Task) (service.Task, error) {
	if r.ID != "" {
		for _, t := range tasks {
			if t.ID == r.ID {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task not found: %s", r.ID)
	}
	if r.Num < 1 || r.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
	}
	return tasks[r.Num-1], nil
}

// isAllDigits returns true if s is non-empty and contains only ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
