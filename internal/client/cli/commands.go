package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/rmcatalog/internal/client/backup"
	"github.com/dmitrijs2005/rmcatalog/internal/client/client"
	"github.com/dmitrijs2005/rmcatalog/internal/client/httpapi"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/view"
	"github.com/dmitrijs2005/rmcatalog/internal/common"
)

// notLocalError is returned when edit or delete targets a remote character.
type notLocalError struct{ action string }

func (e notLocalError) Error() string {
	return "only locally created characters can be " + e.action
}

func (e notLocalError) Unwrap() error { return common.ErrNotLocal }

// ListOptions selects what List prints.
type ListOptions struct {
	Search    string
	Page      int
	Filters   models.Filters
	SortBy    string
	LocalOnly bool
}

// List loads one remote page (plus local characters) and prints it as a
// table. With LocalOnly no remote request is made and Search filters local
// names instead.
func (a *App) List(ctx context.Context, opts ListOptions) error {
	if opts.LocalOnly {
		a.store.LoadLocal(ctx)
		chars := a.store.FilterLocal(opts.Search)
		return a.printTable(chars, func(int) bool { return true }, opts.SortBy)
	}

	a.store.Goto(opts.Search, opts.Page)
	filters := opts.Filters
	if err := a.store.Load(ctx, &filters); err != nil {
		a.logger.Debug(ctx, "list without remote page", "error", err)
	}
	return a.printPage(opts.SortBy)
}

func (a *App) printPage(sortBy string) error {
	snap := a.store.Snapshot()
	if snap.Error != "" {
		fmt.Fprintln(a.out, "error:", snap.Error)
	}

	local := make(map[int]bool, len(snap.Local))
	for _, c := range snap.Local {
		local[c.ID] = true
	}
	if err := a.printTable(snap.All(), func(id int) bool { return local[id] }, sortBy); err != nil {
		return err
	}

	if snap.TotalPages > 0 {
		fmt.Fprintf(a.out, "Page %d of %d", snap.CurrentPage, snap.TotalPages)
		if snap.SearchTerm != "" {
			fmt.Fprintf(a.out, " (search: %q)", snap.SearchTerm)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *App) printTable(chars []models.Character, isLocal func(int) bool, sortBy string) error {
	if len(chars) == 0 {
		fmt.Fprintln(a.out, "No characters found.")
		return nil
	}
	if sortBy == "name" {
		view.SortByName(chars)
	}
	return a.render.Table(a.out, chars, isLocal)
}

// Show prints the detail view of one character, fetching it from the API
// unless it is local.
func (a *App) Show(ctx context.Context, id int) error {
	c, local, err := a.store.Detail(ctx, id)
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("character %d not found", id)
		}
		return fmt.Errorf("failed to load character %d: %w", id, err)
	}
	fmt.Fprint(a.out, a.render.Detail(*c, local))
	return nil
}

// Create validates form, prompting for missing fields first when the
// session is interactive, and stores a new local character.
func (a *App) Create(ctx context.Context, form models.CharacterForm) error {
	if a.interactive && hasMissingFields(form) {
		var err error
		if form, err = promptForm(a.reader, a.out, form); err != nil {
			return err
		}
	}

	form = clearOptional(form).Normalize()
	if err := form.Validate(); err != nil {
		return err
	}

	c, err := a.store.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", a.render.Card(*c, true))
	return nil
}

// Edit applies the non-empty fields of patch to a local character; a Type of
// "-" clears it. With an empty patch in an interactive session every field
// is prompted for, with the current value as default.
func (a *App) Edit(ctx context.Context, id int, patch models.CharacterForm) error {
	current := a.local.GetByID(ctx, id)
	if current == nil {
		return notLocalError{action: "edited"}
	}

	form := models.FormFrom(*current)
	if patch == (models.CharacterForm{}) && a.interactive {
		var err error
		if form, err = promptForm(a.reader, a.out, form); err != nil {
			return err
		}
	} else {
		form = mergeForm(form, patch)
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return err
	}

	c, err := a.store.Update(ctx, id, form)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return notLocalError{action: "edited"}
		}
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", a.render.Card(*c, true))
	return nil
}

// Delete removes a local character after confirmation. Non-interactive
// sessions must pass yes.
func (a *App) Delete(ctx context.Context, id int, yes bool) error {
	c := a.local.GetByID(ctx, id)
	if c == nil {
		return notLocalError{action: "deleted"}
	}

	ok, err := a.confirm(fmt.Sprintf("Delete %q (#%d)?", c.Name, c.ID), yes)
	if err != nil || !ok {
		return err
	}

	deleted, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notLocalError{action: "deleted"}
	}
	fmt.Fprintf(a.out, "Deleted character #%d\n", id)
	return nil
}

// Stats loads the current page and prints the aggregate counters.
func (a *App) Stats(ctx context.Context) error {
	if err := a.store.Load(ctx, nil); err != nil {
		a.logger.Debug(ctx, "stats without remote page", "error", err)
	}
	if msg := a.store.Snapshot().Error; msg != "" {
		fmt.Fprintln(a.out, "error:", msg)
	}
	fmt.Fprint(a.out, a.render.Stats(a.store.Stats()))
	return nil
}

// Clear wipes local characters and the id counter after confirmation.
func (a *App) Clear(ctx context.Context, yes bool) error {
	n := a.local.Count(ctx)
	ok, err := a.confirm(fmt.Sprintf("Remove all %d local characters?", n), yes)
	if err != nil || !ok {
		return err
	}
	if err := a.store.ClearLocalData(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local data cleared.")
	return nil
}

// Export writes the local characters as JSON to path, or to the output
// when path is empty or "-".
func (a *App) Export(ctx context.Context, path string) error {
	data, err := a.local.Export(ctx)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d characters to %s\n", a.local.Count(ctx), path)
	return nil
}

// Backup uploads an export to the configured S3 bucket.
func (a *App) Backup(ctx context.Context) error {
	s3cfg := a.config.S3
	if s3cfg.Bucket == "" {
		return backup.ErrNotConfigured
	}
	up, err := a.newUploader(ctx, s3cfg)
	if err != nil {
		return err
	}

	key, err := backup.NewService(up, a.local, s3cfg.Bucket, s3cfg.Prefix, a.logger).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup uploaded to s3://%s/%s\n", s3cfg.Bucket, key)
	return nil
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	h := httpapi.NewHandler(a.remote, a.local, a.logger)
	router := httpapi.NewRouter(h, a.config.AllowedOrigins, a.logger)
	fmt.Fprintf(a.out, "Serving the catalog API on http://%s/api\n", a.config.ListenAddr)
	return httpapi.NewServer(a.config.ListenAddr, router, a.logger).Run(ctx)
}

func (a *App) confirm(prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.interactive {
		return false, errors.New("refusing to continue without confirmation, pass --yes")
	}
	ok, err := Confirm(a.reader, prompt, a.out)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
	}
	return ok, nil
}

// ParseFormFlags builds a form from raw flag values. Status and gender are
// matched case-insensitively; unknown values are kept so validation can
// report them.
func ParseFormFlags(name, status, species, gender, typ string) models.CharacterForm {
	f := models.CharacterForm{Name: name, Species: species, Type: typ}
	if s, ok := models.ParseStatus(status); ok {
		f.Status = s
	} else {
		f.Status = models.Status(strings.TrimSpace(status))
	}
	if g, ok := models.ParseGender(gender); ok {
		f.Gender = g
	} else {
		f.Gender = models.Gender(strings.TrimSpace(gender))
	}
	return f
}
