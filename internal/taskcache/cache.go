// Package taskcache keeps the task list visible to the current viewer and
// routes every mutation through the API, trusting the server's response
// over any local edit.
package taskcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"taskdash/internal/service"
)

// ErrForbidden is returned by FetchAll for viewers without admin capability.
var ErrForbidden = errors.New("listing all tasks requires admin access")

// Cache is the in-memory task collection for one view scope.
//
// Concurrent calls are allowed and are not serialized against each other:
// the lock guards state only and is released across network calls. Calls
// for the same task are not deduplicated; the last failure to arrive owns
// the error slot.
type Cache struct {
	api service.TaskAPI
	log *log.Logger

	mu       sync.Mutex
	tasks    []service.Task
	inFlight int
	lastErr  string
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty cache backed by api.
func New(api service.TaskAPI, opts ...Option) *Cache {
	c := &Cache{
		api: api,
		log: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns a copy of the cached collection.
func (c *Cache) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Task(nil), c.tasks...)
}

// Loading reports whether any network-backed call is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// LastError returns the message of the most recent failure, or "".
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError empties the error slot.
func (c *Cache) ClearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// begin marks a call in flight and clears the previous error.
func (c *Cache) begin() {
	c.mu.Lock()
	c.inFlight++
	c.lastErr = ""
	c.mu.Unlock()
}

// fail records err as the last error and ends the call.
func (c *Cache) fail(op string, err error) error {
	err = fmt.Errorf("failed to %s: %w", op, err)
	c.mu.Lock()
	c.inFlight--
	c.lastErr = err.Error()
	c.mu.Unlock()
	c.log.Printf("taskcache: %v", err)
	return err
}

// Load fetches the viewer's scope: every task for admins, the viewer's own
// tasks otherwise.
func (c *Cache) Load(ctx context.Context, viewer service.Identity) error {
	if viewer.IsAdmin() {
		return c.FetchAll(ctx, viewer)
	}
	return c.FetchMine(ctx, viewer.ID)
}

// FetchAll replaces the collection with every task. The viewer must be an
// admin; otherwise no request is made.
func (c *Cache) FetchAll(ctx context.Context, viewer service.Identity) error {
	c.begin()
	if !viewer.IsAdmin() {
		return c.fail("fetch tasks", ErrForbidden)
	}
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		return c.fail("fetch tasks", err)
	}
	c.replaceAll(tasks)
	return nil
}

// FetchMine replaces the collection with the tasks assigned to identityID.
func (c *Cache) FetchMine(ctx context.Context, identityID string) error {
	c.begin()
	tasks, err := c.api.ListUserTasks(ctx, identityID)
	if err != nil {
		return c.fail("fetch user tasks", err)
	}
	c.replaceAll(tasks)
	return nil
}

func (c *Cache) replaceAll(tasks []service.Task) {
	c.mu.Lock()
	c.tasks = append([]service.Task(nil), tasks...)
	c.inFlight--
	c.mu.Unlock()
	c.log.Printf("taskcache: loaded %d tasks", len(tasks))
}

// Create asks the server to create a task and appends the returned task.
func (c *Cache) Create(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	c.begin()
	task, err := c.api.CreateTask(ctx, draft)
	if err != nil {
		return service.Task{}, c.fail("create task", err)
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.inFlight--
	c.mu.Unlock()
	return task, nil
}

// Update sends patch and replaces the cached entry with the server's copy.
// If id is not cached the server's copy is dropped, not appended.
func (c *Cache) Update(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	c.begin()
	task, err := c.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return service.Task{}, c.fail("update task", err)
	}

	c.mu.Lock()
	replaced := false
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = task
			replaced = true
		}
	}
	c.inFlight--
	c.mu.Unlock()
	if !replaced {
		c.log.Printf("taskcache: update for uncached task %s dropped", id)
	}
	return task, nil
}

// Delete asks the server to delete id and removes it from the collection.
// The request is sent even when id is not cached.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.begin()
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return c.fail("delete task", err)
	}

	c.mu.Lock()
	kept := c.tasks[:0:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.inFlight--
	c.mu.Unlock()
	return nil
}
