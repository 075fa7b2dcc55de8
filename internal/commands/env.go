package commands

import (
	"errors"
	"io"
	"log"

	"taskdash/internal/service"
	"taskdash/internal/session"
	"taskdash/internal/taskcache"
)

// Env carries the state a command works with. It is built once per process
// by the composition root.
type Env struct {
	Session *session.Store
	Tasks   *taskcache.Cache
	Users   service.Directory
	Log     *log.Logger

	closers []io.Closer
}

// NewEnv assembles an Env. closers are closed by Close in order.
func NewEnv(s *session.Store, tasks *taskcache.Cache, users service.Directory, logger *log.Logger, closers ...io.Closer) *Env {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Env{
		Session: s,
		Tasks:   tasks,
		Users:   users,
		Log:     logger,
		closers: closers,
	}
}

// Close releases the resources held by the Env.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
