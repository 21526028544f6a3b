package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
)

type fakeExec struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeExec) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeExec) Page(context.Context) error        { return f.record("page") }
func (f *fakeExec) Next(context.Context) error        { return f.record("next") }
func (f *fakeExec) Prev(context.Context) error        { return f.record("prev") }
func (f *fakeExec) ClearSearch(context.Context) error { return f.record("clear-search") }
func (f *fakeExec) Stats(context.Context) error       { return f.record("stats") }
func (f *fakeExec) Search(_ context.Context, term string) error {
	return f.record("search " + term)
}
func (f *fakeExec) Show(_ context.Context, id int) error { return f.record(fmt.Sprint("show ", id)) }
func (f *fakeExec) Create(_ context.Context, form models.CharacterForm) error {
	return f.record("create")
}
func (f *fakeExec) Edit(_ context.Context, id int, patch models.CharacterForm) error {
	return f.record(fmt.Sprint("edit ", id))
}
func (f *fakeExec) Delete(_ context.Context, id int, yes bool) error {
	return f.record(fmt.Sprint("delete ", id, " ", yes))
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func runScript(t *testing.T, exec execIface, window time.Duration, lines ...string) {
	t.Helper()
	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "1/42" }, reader, window)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour,
		"help",
		"list",
		"next",
		"prev",
		"show 7",
		"create",
		"edit 10001",
		"delete 10001",
		"stats",
		"clear-search",
		"exit",
		"stats",
	)

	assert.Equal(t, []string{
		"page", "next", "prev", "show 7", "create", "edit 10001",
		"delete 10001 false", "stats", "clear-search",
	}, exec.Calls())
}

func TestRunREPL_SearchIsDebounced(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour,
		"search r",
		"search ri",
		"search rick sanchez",
		"list",
		"quit",
	)

	assert.Equal(t, []string{"search rick sanchez", "page"}, exec.Calls())
}

func TestRunREPL_SearchFiresAfterQuietPeriod(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	reader, writer := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(reader), 10*time.Millisecond)
	}()

	_, _ = io.WriteString(writer, "search morty\n")
	assert.Eventually(t, func() bool {
		return len(exec.Calls()) == 1
	}, time.Second, 5*time.Millisecond)
	_, _ = io.WriteString(writer, "exit\n")
	<-done

	assert.Equal(t, []string{"search morty"}, exec.Calls())
}

func TestRunREPL_PendingSearchDroppedOnEOF(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour, "search rick")

	assert.Empty(t, exec.Calls())
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour, "show", "edit abc", "delete 0", "search", "foobar", "", "quit")

	assert.Empty(t, exec.Calls())
	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "usage: show <id>")
	assert.Contains(t, joined, "usage: edit <id>")
	assert.Contains(t, joined, "usage: delete <id>")
	assert.Contains(t, joined, "usage: search <term>")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_ErrorsArePrintedAndLoopContinues(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{err: errors.New("only locally created characters can be edited")}

	runScript(t, exec, time.Hour, "edit 1", "stats", "exit")

	assert.Equal(t, []string{"edit 1", "stats"}, exec.Calls())
	assert.Contains(t, strings.Join(*out, ""), "error: only locally created characters can be edited")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour, "list", "show 3")

	assert.Equal(t, []string{"page", "show 3"}, exec.Calls())
}

func TestRunREPL_PendingSearchDroppedOnExit(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{}

	runScript(t, exec, time.Hour, "search rick", "exit")

	assert.Empty(t, exec.Calls())
	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Pending search dropped.")
	assert.Contains(t, joined, "Bye!")
}
