package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
	"taskdash/internal/testutil/testenv"
)

var (
	john = service.Identity{ID: "1", Email: "john@example.com", Firstname: "John", Role: "admin"}
	jane = service.Identity{ID: "2", Email: "jane@example.com", Firstname: "Jane", Role: "member"}
)

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{ID: "t1", Title: "Write report", Status: service.StatusPending, AssignedTo: "2"})
	svc.AddTask(service.Task{ID: "t2", Title: "Fix login bug", Description: "Safari only", Status: service.StatusInProgress, AssignedTo: "3"})
	svc.AddTask(service.Task{ID: "t3", Title: "Review PR", Status: service.StatusCompleted, AssignedTo: "2"})
	return svc
}

// runCommand parses argv with the command's flags and runs it.
func runCommand(t *testing.T, cmd commands.Command, env *commands.Env, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("failed to parse %v: %v", argv, err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:      t.TempDir(),
		Quiet:    quiet,
		Settings: config.Defaults(),
	}

	code = cmd.Run(context.Background(), cfg, env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdash 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand_ListsRegisteredCommands(t *testing.T) {
	stdout, _, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, name := range []string{"Usage:", "login", "signup", "list", "add", "edit", "done", "rm", "members", "config", "--debug"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected help to mention %q", name)
		}
	}
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, _, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, []string{"create"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "taskdash add") {
		t.Errorf("expected add usage, got %q", stdout)
	}
}

func TestHelpCommand_Unknown(t *testing.T) {
	_, stderr, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, []string{"nope"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_AdminSeesEverything(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, env, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "   1  [pending]     Write report  (@2)\n" +
		"   2  [in-progress] Fix login bug  (@3)\n" +
		"   3  [completed]   Review PR  (@2)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_MemberSeesOwnTasks(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &jane)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, env, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Contains(stdout, "Fix login bug") {
		t.Errorf("member should not see other users' tasks: %q", stdout)
	}
	if !strings.Contains(stdout, "   2  [completed]   Review PR") {
		t.Errorf("expected Review PR at position 2, got %q", stdout)
	}
	if svc.Calls("ListTasks") != 0 {
		t.Errorf("expected no ListTasks call for a member, got %d", svc.Calls("ListTasks"))
	}
}

func TestListCommand_FilterKeepsPositions(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, env, []string{"--status", "completed"}, false)
	if stdout != "   3  [completed]   Review PR  (@2)\n" {
		t.Errorf("unexpected status filter output %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, env, []string{"--search", "SAFARI"}, false)
	if stdout != "   2  [in-progress] Fix login bug  (@3)\n" {
		t.Errorf("unexpected search output %q", stdout)
	}
}

func TestListCommand_FlagsResetBetweenRuns(t *testing.T) {
	env := testenv.New(t, seeded(), &john)
	cmd := &commands.ListCmd{}

	runCommand(t, cmd, env, []string{"--status", "completed"}, false)
	stdout, _, _ := runCommand(t, cmd, env, nil, false)

	if strings.Count(stdout, "\n") != 3 {
		t.Errorf("expected all 3 tasks after reset, got %q", stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	env := testenv.New(t, testutil.NewFakeService(), &john)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, env, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, env, nil, true)
	if stdout != "" {
		t.Errorf("expected no output when quiet, got %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.ListTasksErr = errors.New("Internal Server Error")
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, env, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: failed to fetch tasks: Internal Server Error\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	env := testenv.New(t, svc, &john)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, env,
		[]string{"--assign", "2", "--deadline", "2026-11-01", "Plan", "sprint"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok t1\n" {
		t.Errorf("expected 'ok t1', got %q", stdout)
	}
	got := svc.Tasks()[0]
	if got.Title != "Plan sprint" || got.AssignedTo != "2" || got.Deadline != "2026-11-01" || got.Status != service.StatusPending {
		t.Errorf("unexpected created task %+v", got)
	}
	cached := env.Tasks.Tasks()
	if len(cached) != 1 || cached[0].ID != "t1" {
		t.Errorf("expected created task in cache, got %+v", cached)
	}
}

func TestAddCommand_MemberForbidden(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &jane)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, env, []string{"x"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: only admins can create tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("CreateTask") != 0 {
		t.Error("expected no CreateTask call")
	}
}

func TestAddCommand_Validation(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{nil, "error: title required\n"},
		{[]string{"--title", "a", "b"}, "error: cannot use both --title and a positional title\n"},
		{[]string{"--deadline", "tomorrow", "a"}, "error: invalid deadline: tomorrow (want YYYY-MM-DD)\n"},
	}
	for _, tt := range tests {
		env := testenv.New(t, seeded(), &john)
		_, stderr, code := runCommand(t, &commands.AddCmd{}, env, tt.argv, false)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.argv, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.argv, tt.want, stderr)
		}
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.CreateTaskErr = errors.New("Bad Request")
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, env, []string{"--title", "x"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: failed to create task: Bad Request\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDoneCommand_ByNumber(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, env, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if svc.Tasks()[0].Status != service.StatusCompleted {
		t.Errorf("expected t1 completed, got %s", svc.Tasks()[0].Status)
	}
	if svc.LastPatch.Status == nil || svc.LastPatch.Title != nil {
		t.Errorf("expected a status-only patch, got %+v", svc.LastPatch)
	}
	if env.Tasks.Tasks()[0].Status != service.StatusCompleted {
		t.Error("expected cache to hold the server's copy")
	}
}

func TestDoneCommand_ByID(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	_, _, code := runCommand(t, &commands.DoneCmd{}, env, []string{"t2"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.Tasks()[1].Status != service.StatusCompleted {
		t.Errorf("expected t2 completed, got %s", svc.Tasks()[1].Status)
	}
}

func TestDoneCommand_Errors(t *testing.T) {
	tests := []struct {
		argv []string
		code int
		want string
	}{
		{nil, exitcode.UserError, "error: task reference required\n"},
		{[]string{"9"}, exitcode.UserError, "error: task number out of range: 9\n"},
		{[]string{"#x"}, exitcode.UserError, "error: invalid task reference: #x\n"},
		{[]string{"missing"}, exitcode.UserError, "error: task not found: missing\n"},
		{[]string{"--id", "1"}, exitcode.UserError, "error: task not found: 1\n"},
	}
	for _, tt := range tests {
		env := testenv.New(t, seeded(), &john)
		_, stderr, code := runCommand(t, &commands.DoneCmd{}, env, tt.argv, false)
		if code != tt.code {
			t.Errorf("%v: expected exit code %d, got %d", tt.argv, tt.code, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.argv, tt.want, stderr)
		}
	}
}

func TestDoneCommand_UpdateFails(t *testing.T) {
	svc := seeded()
	svc.UpdateTaskErr = errors.New("Not Found")
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, env, []string{"1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: failed to update task: Not Found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestStartCommand(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	_, _, code := runCommand(t, &commands.StartCmd{}, env, []string{"#1"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.Tasks()[0].Status != service.StatusInProgress {
		t.Errorf("expected t1 in-progress, got %s", svc.Tasks()[0].Status)
	}
}

func TestEditCommand_SendsOnlyGivenFields(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, env,
		[]string{"--title", "Write final report", "--description", "", "2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	p := svc.LastPatch
	if p.Title == nil || *p.Title != "Write final report" {
		t.Errorf("expected title in patch, got %+v", p)
	}
	if p.Description == nil || *p.Description != "" {
		t.Errorf("expected empty description in patch, got %+v", p)
	}
	if p.Status != nil || p.AssignedTo != nil || p.Deadline != nil {
		t.Errorf("expected unset fields to stay nil, got %+v", p)
	}
	got := svc.Tasks()[1]
	if got.Title != "Write final report" || got.Description != "" || got.Status != service.StatusInProgress {
		t.Errorf("unexpected task after edit %+v", got)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	env := testenv.New(t, seeded(), &john)
	cmd := &commands.EditCmd{}

	// A previous run's flags must not leak into the next one.
	runCommand(t, cmd, env, []string{"--status", "completed", "1"}, true)
	_, stderr, code := runCommand(t, cmd, env, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: nothing to change\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_EmptyTitle(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, env, []string{"--title", " ", "1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title cannot be empty\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("UpdateTask") != 0 {
		t.Error("expected no UpdateTask call")
	}
}

func TestEditCommand_MemberForbidden(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &jane)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, env, []string{"--title", "Mine now", "1"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: only admins can edit tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("UpdateTask") != 0 || svc.Calls("ListUserTasks") != 0 {
		t.Error("expected no request")
	}
}

func TestRmCommand_Multiple(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, env, []string{"1", "t3", "#1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if svc.Calls("DeleteTask") != 2 {
		t.Errorf("expected 2 deletes, got %d", svc.Calls("DeleteTask"))
	}
	left := svc.Tasks()
	if len(left) != 1 || left[0].ID != "t2" {
		t.Errorf("expected only t2 left, got %+v", left)
	}
	if cached := env.Tasks.Tasks(); len(cached) != 1 || cached[0].ID != "t2" {
		t.Errorf("expected only t2 cached, got %+v", cached)
	}
}

func TestRmCommand_ResolveFailsBeforeDeleting(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, env, []string{"1", "7"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number out of range: 7\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("DeleteTask") != 0 {
		t.Error("expected no DeleteTask call")
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, env, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmCommand_MemberForbidden(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &jane)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, env, []string{"1"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: only admins can delete tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("DeleteTask") != 0 || svc.Calls("ListUserTasks") != 0 {
		t.Error("expected no request")
	}
	if len(svc.Tasks()) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(svc.Tasks()))
	}
}

func TestRmCommand_ByIDSkipsCache(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, env, []string{"--id", "t2", "t2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if svc.Calls("DeleteTask") != 1 {
		t.Errorf("expected 1 delete, got %d", svc.Calls("DeleteTask"))
	}
	if svc.Calls("ListTasks") != 0 || svc.Calls("ListUserTasks") != 0 {
		t.Error("expected no list request")
	}
	for _, task := range svc.Tasks() {
		if task.ID == "t2" {
			t.Error("expected t2 to be deleted")
		}
	}
}

func TestRmCommand_ByIDUnknown(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, env, []string{"--id", "ghost"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: failed to delete task: not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowCommand(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, env, []string{"t2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "title:       Fix login bug\n") || !strings.Contains(stdout, "    Safari only\n") {
		t.Errorf("unexpected detail output %q", stdout)
	}
}

func TestMembersCommand_ExcludesAdmins(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &john)
	svc.AddUser(jane, "pw", "tok")

	stdout, _, code := runCommand(t, &commands.MembersCmd{}, env, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Contains(stdout, "john@example.com") {
		t.Errorf("admins should not be listed: %q", stdout)
	}
	if !strings.Contains(stdout, "jane@example.com") {
		t.Errorf("expected jane in members, got %q", stdout)
	}
}

func TestMembersCommand_AdminOnly(t *testing.T) {
	svc := seeded()
	env := testenv.New(t, svc, &jane)

	_, stderr, code := runCommand(t, &commands.MembersCmd{}, env, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: only admins can list members\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("ListUsers") != 0 {
		t.Error("expected no ListUsers call")
	}
}

func TestMembersCommand_Empty(t *testing.T) {
	env := testenv.New(t, seeded(), &john)

	stdout, _, _ := runCommand(t, &commands.MembersCmd{}, env, nil, false)

	if stdout != "no members found\n" {
		t.Errorf("expected 'no members found', got %q", stdout)
	}
}

func TestWhoamiCommand(t *testing.T) {
	env := testenv.New(t, seeded(), &jane)

	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, env, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Jane <jane@example.com>\nid:   2\nrole: member\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}
