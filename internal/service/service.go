// Package service defines the backend-agnostic types and interface for the
// remote task API.
package service

import "context"

// Authenticator covers the unauthenticated account endpoints.
type Authenticator interface {
	// Login exchanges email and password for an access token and the user.
	Login(ctx context.Context, email, password string) (LoginResult, error)

	// Register creates an account. It does not log in.
	Register(ctx context.Context, reg Registration) error
}

// TaskAPI covers the task endpoints.
// Every call carries the bearer credential of the current session.
type TaskAPI interface {
	// ListTasks returns every task. Admin only on the server side.
	ListTasks(ctx context.Context) ([]Task, error)

	// ListUserTasks returns the tasks assigned to one user.
	ListUserTasks(ctx context.Context, userID string) ([]Task, error)

	// CreateTask creates a task and returns the server's representation.
	CreateTask(ctx context.Context, draft TaskDraft) (Task, error)

	// UpdateTask applies the set fields of patch and returns the updated task.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}

// Directory covers the team-members endpoint.
type Directory interface {
	// ListUsers returns every registered user in API order.
	ListUsers(ctx context.Context) ([]User, error)
}

// API is the full remote API.
// Commands never talk HTTP directly; everything goes through this interface.
type API interface {
	Authenticator
	TaskAPI
	Directory
}
