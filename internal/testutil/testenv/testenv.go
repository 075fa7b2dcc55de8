// Package testenv builds command environments backed by a FakeService.
package testenv

import (
	"context"
	"path/filepath"
	"testing"

	"taskdash/internal/commands"
	"taskdash/internal/service"
	"taskdash/internal/session"
	"taskdash/internal/storage"
	"taskdash/internal/taskcache"
	"taskdash/internal/testutil"
)

// Password is the password given to users signed in by New.
const Password = "password"

// New returns an Env over svc with a session jar in a temp dir. When user
// is non-nil it is added to svc and signed in.
func New(t *testing.T, svc *testutil.FakeService, user *service.Identity) *commands.Env {
	t.Helper()

	jar, err := storage.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("failed to open jar: %v", err)
	}
	t.Cleanup(func() { jar.Close() })

	ctx := context.Background()
	store := session.Open(ctx, jar, svc)
	if user != nil {
		svc.AddUser(*user, Password, "token-"+user.Email)
		if err := store.Login(ctx, user.Email, Password); err != nil {
			t.Fatalf("failed to sign in %s: %v", user.Email, err)
		}
	}
	return commands.NewEnv(store, taskcache.New(svc), svc, nil)
}
