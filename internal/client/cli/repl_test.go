package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls    []string
	args     [][]string
	reported []error
}

func (f *fakeExec) isLoggedIn() bool   { return f.loggedIn }
func (f *fakeExec) report(err error)   { f.reported = append(f.reported, err) }
func (f *fakeExec) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeExec) Register(ctx context.Context) error { f.record("register"); return nil }
func (f *fakeExec) Login(ctx context.Context) error {
	f.record("login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Status(ctx context.Context) error  { f.record("status"); return nil }
func (f *fakeExec) Metrics(ctx context.Context) error { f.record("metrics"); return nil }

func (f *fakeExec) ListMeals(ctx context.Context, args []string) error {
	f.record("meals")
	f.args = append(f.args, args)
	return nil
}
func (f *fakeExec) ShowMeal(ctx context.Context, args []string) error {
	f.record("meal")
	f.args = append(f.args, args)
	return nil
}
func (f *fakeExec) DeleteMeal(ctx context.Context, args []string) error {
	f.record("delete")
	f.args = append(f.args, args)
	return nil
}
func (f *fakeExec) UploadMeal(ctx context.Context, args []string) error {
	f.record("upload")
	f.args = append(f.args, args)
	return nil
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.Join([]string{
		"help",
		"login",
		"",
		"meals 2",
		"meal m1",
		"delete m1",
		"upload /tmp/plate.jpg",
		"status",
		"metrics",
		"logout",
		"exit",
		"register",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "meals", "meal", "delete", "upload", "status", "metrics", "logout"}, exec.calls)
	assert.Equal(t, [][]string{{"2"}, {"m1"}, {"m1"}, {"/tmp/plate.jpg"}}, exec.args)
	assert.Len(t, exec.reported, len(exec.calls))
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nquit\n")))

	var help []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands") {
			help = append(help, l)
		}
	}
	if assert.Len(t, help, 2) {
		assert.Contains(t, help[0], "register")
		assert.Contains(t, help[1], "meals")
	}
}

func TestRunREPL_UnknownAndEOF(t *testing.T) {
	lines := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("foobar\nmeals")))

	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Equal(t, []string{"meals"}, exec.calls, "last line without newline still runs")
}
