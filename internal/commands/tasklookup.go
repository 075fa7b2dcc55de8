package commands

import (
	"context"
	"fmt"
	"io"

	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

// loadAndResolve loads the viewer's tasks into the cache and resolves ref
// against them. On failure it prints the error and returns a non-zero code.
func loadAndResolve(ctx context.Context, env *Env, ref TaskRef, errOut io.Writer) (service.Task, int) {
	viewer := env.Session.Current()
	if err := env.Tasks.Load(ctx, *viewer); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", env.Tasks.LastError())
		return service.Task{}, exitcode.BackendError
	}

	task, err := ref.Resolve(env.Tasks.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}

// parseRef parses args into a TaskRef, printing usage errors.
func parseRef(args []string, byID bool, errOut io.Writer) (TaskRef, bool) {
	ref, err := ParseTaskRef(args, byID)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return TaskRef{}, false
	}
	return ref, true
}
