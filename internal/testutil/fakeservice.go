// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskdash/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned for bad credentials.
var ErrUnauthorized = errors.New("unauthorized")

// FakeService is an in-memory implementation of service.API for testing.
type FakeService struct {
	mu     sync.RWMutex
	users  map[string]fakeAccount // email -> account
	tasks  []service.Task
	nextID int
	calls  map[string]int

	// Error injection for testing
	LoginErr         error
	RegisterErr      error
	ListTasksErr     error
	ListUserTasksErr error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	ListUsersErr     error

	// UpdateHook, if set, runs before UpdateTask touches state.
	// Tests use it to hold a call in flight.
	UpdateHook func(id string)

	// LastPatch is the most recent patch passed to UpdateTask.
	LastPatch service.TaskPatch
}

type fakeAccount struct {
	password string
	user     service.Identity
	token    string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]fakeAccount),
		calls:  make(map[string]int),
		nextID: 1,
	}
}

// AddUser registers an account that can log in.
func (f *FakeService) AddUser(user service.Identity, password, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.Email] = fakeAccount{password: password, user: user, token: token}
}

// AddTask seeds a task exactly as given.
func (f *FakeService) AddTask(task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
}

// Tasks returns a copy of the server-side tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

// Calls returns how many times the named method ran.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// Login implements service.Authenticator.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	acct, ok := f.users[email]
	if !ok || acct.password != password {
		return service.LoginResult{}, ErrUnauthorized
	}
	return service.LoginResult{AccessToken: acct.token, User: acct.user}, nil
}

// Register implements service.Authenticator.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[reg.Email]; exists {
		return errors.New("conflict")
	}
	f.users[reg.Email] = fakeAccount{
		password: reg.Password,
		user: service.Identity{
			ID:        fmt.Sprintf("u%d", len(f.users)+1),
			Email:     reg.Email,
			Firstname: reg.Firstname,
			Role:      reg.Role,
		},
		token: "token-" + reg.Email,
	}
	return nil
}

// ListTasks implements service.TaskAPI.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// ListUserTasks implements service.TaskAPI.
func (f *FakeService) ListUserTasks(ctx context.Context, userID string) ([]service.Task, error) {
	f.record("ListUserTasks")
	if f.ListUserTasksErr != nil {
		return nil, f.ListUserTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []service.Task
	for _, t := range f.tasks {
		if t.AssignedTo == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

// CreateTask implements service.TaskAPI.
func (f *FakeService) CreateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task := service.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		Title:       draft.Title,
		Description: draft.Description,
		AssignedTo:  draft.AssignedTo,
		Status:      draft.Status,
		CreatedAt:   fmt.Sprintf("2026-01-01T00:00:%02dZ", f.nextID%60),
		Deadline:    draft.Deadline,
	}
	if task.Status == "" {
		task.Status = service.StatusPending
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.TaskAPI.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateHook != nil {
		f.UpdateHook(id)
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPatch = patch

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Deadline != nil {
			t.Deadline = *patch.Deadline
		}
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.TaskAPI.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListUsers implements service.Directory.
func (f *FakeService) ListUsers(ctx context.Context) ([]service.User, error) {
	f.record("ListUsers")
	if f.ListUsersErr != nil {
		return nil, f.ListUsersErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []service.User
	for _, acct := range f.users {
		result = append(result, service.User{
			ID:        acct.user.ID,
			Username:  acct.user.Username,
			Email:     acct.user.Email,
			Firstname: acct.user.Firstname,
			Role:      acct.user.Role,
		})
	}
	sortUsers(result)
	return result, nil
}
