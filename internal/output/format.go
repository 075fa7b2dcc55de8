// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdash/internal/service"
)

// FormatTask formats a task line for the list command.
// Format: "{N:>4}  {[STATUS]:<13} {TITLE}{SUFFIX}\n" where SUFFIX carries the
// deadline and assignee when present.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %-13s %s%s\n", num, "["+statusLabel(task.Status)+"]", normalizeTitle(task.Title), taskSuffix(task))
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", statusLabel(task.Status))
	fmt.Fprintf(w, "assigned to: %s\n", orDash(task.AssignedTo))
	fmt.Fprintf(w, "deadline:    %s\n", orDash(task.Deadline))
	fmt.Fprintf(w, "created at:  %s\n", orDash(task.CreatedAt))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintln(w, "")
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(w, "    %s\n", strings.TrimRight(line, "\r"))
		}
	}
}

// FormatMember formats one line of the members directory.
func FormatMember(w io.Writer, user service.User) {
	name := strings.TrimSpace(user.Firstname)
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "%-30s %-16s %s\n", user.Email, name, user.ID)
}

// FormatIdentity prints the signed-in identity.
func FormatIdentity(w io.Writer, id service.Identity) {
	role := "member"
	if id.IsAdmin() {
		role = "admin"
	}
	fmt.Fprintf(w, "%s <%s>\n", id.DisplayName(), id.Email)
	fmt.Fprintf(w, "id:   %s\n", orDash(id.ID))
	fmt.Fprintf(w, "role: %s\n", role)
}

func taskSuffix(task service.Task) string {
	var parts []string
	if d := strings.TrimSpace(task.Deadline); d != "" {
		parts = append(parts, "due "+d)
	}
	if a := strings.TrimSpace(task.AssignedTo); a != "" {
		parts = append(parts, "@"+a)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func statusLabel(s service.Status) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
