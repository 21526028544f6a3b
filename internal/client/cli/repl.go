package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rmcatalog/internal/client/debounce"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/store"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const replHelp = `Available commands:
  list              reload and show the current page
  next | prev       move between pages
  search <term>     search by name
  clear-search      drop the active search
  show <id>         show one character
  create            create a local character
  edit <id>         edit a local character
  delete <id>       delete a local character
  stats             show counters
  exit | quit       leave`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Page(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Search(ctx context.Context, term string) error
	ClearSearch(ctx context.Context) error
	Show(ctx context.Context, id int) error
	Create(ctx context.Context, form models.CharacterForm) error
	Edit(ctx context.Context, id int, patch models.CharacterForm) error
	Delete(ctx context.Context, id int, yes bool) error
	Stats(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit".
//
// Search requests are debounced with the given window; any pending search
// runs before the next command so commands always see its result, but is
// dropped on exit or EOF. Command errors are printed and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, window time.Duration) {
	// serializes commands with the debounced search running on a timer goroutine
	var mu sync.Mutex
	run := func(fn func() error) {
		mu.Lock()
		defer mu.Unlock()
		if err := fn(); err != nil {
			printlnFn("error:", err)
		}
	}

	search := debounce.New(window, func(term string) {
		run(func() error { return a.Search(ctx, term) })
	})
	defer search.Stop()

	for {
		printlnFn(fmt.Sprintf("rm %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "search" {
			if len(args) == 0 {
				printlnFn("usage: search <term>")
				continue
			}
			search.Submit(strings.Join(args, " "))
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			if search.Pending() {
				printlnFn("Pending search dropped.")
			}
			printlnFn("Bye!")
			return
		}
		search.Flush()

		switch cmd {
		case "help":
			printlnFn(replHelp)

		case "l", "list":
			run(func() error { return a.Page(ctx) })

		case "n", "next":
			run(func() error { return a.Next(ctx) })

		case "p", "prev":
			run(func() error { return a.Prev(ctx) })

		case "clear-search":
			run(func() error { return a.ClearSearch(ctx) })

		case "show", "edit", "delete":
			id, ok := parseIDArg(args)
			if !ok {
				printlnFn(fmt.Sprintf("usage: %s <id>", cmd))
				continue
			}
			run(func() error {
				switch cmd {
				case "show":
					return a.Show(ctx, id)
				case "edit":
					return a.Edit(ctx, id, models.CharacterForm{})
				default:
					return a.Delete(ctx, id, false)
				}
			})

		case "create":
			run(func() error { return a.Create(ctx, models.CharacterForm{}) })

		case "stats":
			run(func() error { return a.Stats(ctx) })

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func parseIDArg(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// REPL loads the first page and runs the interactive loop until the user
// leaves or ctx is cancelled.
func (a *App) REPL(ctx context.Context) error {
	a.interactive = true
	printlnFn("Rick and Morty catalog. Type help for commands.")
	if err := a.Page(ctx); err != nil {
		printlnFn("error:", err)
	}
	runREPL(ctx, a, a.status, a.reader, a.config.SearchDebounce)
	return nil
}

func (a *App) status() string {
	st := a.store.Snapshot()
	s := fmt.Sprintf("%d/%d", st.CurrentPage, st.TotalPages)
	if st.SearchTerm != "" {
		s += fmt.Sprintf(" %q", st.SearchTerm)
	}
	return s
}

// Page reloads the current page and prints it.
func (a *App) Page(ctx context.Context) error {
	return a.reload(func() error { return a.store.Load(ctx, nil) })
}

func (a *App) Next(ctx context.Context) error {
	if !a.store.NextPage() {
		fmt.Fprintln(a.out, "Already on the last page.")
		return nil
	}
	return a.Page(ctx)
}

func (a *App) Prev(ctx context.Context) error {
	if !a.store.PrevPage() {
		fmt.Fprintln(a.out, "Already on the first page.")
		return nil
	}
	return a.Page(ctx)
}

func (a *App) Search(ctx context.Context, term string) error {
	return a.reload(func() error { return a.store.Search(ctx, term) })
}

func (a *App) ClearSearch(ctx context.Context) error {
	return a.reload(func() error { return a.store.ClearSearch(ctx) })
}

// reload runs load and prints the resulting page. Load failures are part of
// the printed state; a superseded load prints nothing.
func (a *App) reload(load func() error) error {
	if err := load(); err != nil {
		if errors.Is(err, store.ErrSuperseded) {
			return nil
		}
		a.logger.Debug(context.Background(), "page without remote results", "error", err)
	}
	return a.printPage("")
}
