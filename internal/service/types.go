// Package service defines the backend-agnostic types and interface for the
// remote task API.
package service

import "strings"

// AdminGroup is the group whose members may see and create every task.
const AdminGroup = "Admins"

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"

	// StatusAll is a filter value, never a task state.
	StatusAll Status = "all"
)

// Statuses lists the task states in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the three task states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single task as returned by the server.
type Task struct {
	ID          string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	Status      Status `json:"status"`
	CreatedAt   string `json:"created_at"`
	Deadline    string `json:"deadline"`
}

// TaskDraft is a task before the server has assigned its ID and creation time.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	Status      Status `json:"status"`
	Deadline    string `json:"deadline"`
}

// TaskPatch holds the fields to change on an existing task.
// Nil fields are left out of the request.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.AssignedTo == nil &&
		p.Status == nil && p.Deadline == nil
}

// Identity is the authenticated user.
type Identity struct {
	ID        string   `json:"user_id"`
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email"`
	Firstname string   `json:"firstname"`
	Role      string   `json:"role,omitempty"`
	Groups    []string `json:"groups,omitempty"`
}

// IsAdmin reports whether the identity has elevated capability.
func (i Identity) IsAdmin() bool {
	if strings.EqualFold(i.Role, "admin") {
		return true
	}
	for _, g := range i.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}

// DisplayName returns the first name, or the local part of the email.
func (i Identity) DisplayName() string {
	if strings.TrimSpace(i.Firstname) != "" {
		return i.Firstname
	}
	name, _, _ := strings.Cut(i.Email, "@")
	return name
}

// User is an entry in the team-members directory.
type User struct {
	ID        string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Role      string `json:"role"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Role      string `json:"role"`
}

// LoginResult is what the server hands back on a successful login.
type LoginResult struct {
	AccessToken string
	User        Identity
}
