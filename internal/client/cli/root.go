package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/rmcatalog/internal/buildinfo"
	"github.com/dmitrijs2005/rmcatalog/internal/client/config"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
)

// formFlags holds the character fields accepted by create and edit.
type formFlags struct {
	name, status, species, gender, typ string
}

func (f *formFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "character name")
	fs.StringVar(&f.status, "status", "", "Alive, Dead or unknown")
	fs.StringVar(&f.species, "species", "", "species, e.g. Human")
	fs.StringVar(&f.gender, "gender", "", "Female, Male, Genderless or unknown")
	fs.StringVar(&f.typ, "type", "", `optional subtype, "-" or "" clears it on edit`)
}

// form builds the form; an explicit empty --type means clear it.
func (f *formFlags) form(fs *pflag.FlagSet) models.CharacterForm {
	typ := f.typ
	if typ == "" && fs.Changed("type") {
		typ = clearValue
	}
	return ParseFormFlags(f.name, f.status, f.species, f.gender, typ)
}

// registerConfigFlags declares the configuration flags so cobra accepts
// them. Their values are read by config.LoadConfig from the raw arguments.
func registerConfigFlags(fs *pflag.FlagSet) {
	d := config.Config{}
	d.LoadDefaults()

	fs.StringP("config", "c", "", "path to a JSON or YAML config file")
	fs.StringP("api", "a", d.APIBaseURL, "remote API base URL")
	fs.StringP("db", "d", d.DatabasePath, "SQLite database path")
	fs.Duration("timeout", d.RequestTimeout, "remote request timeout")
	fs.Duration("debounce", d.SearchDebounce, "search debounce window")
	fs.String("locale", d.Locale, "label language (en, pt)")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.Bool("no-color", false, "disable coloured output")
}

// NewRootCmd builds the command tree. args are the raw command-line
// arguments used for configuration loading.
func NewRootCmd(args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "rmcatalog",
		Short:         "Browse the Rick and Morty catalog and manage local characters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerConfigFlags(root.PersistentFlags())

	run := func(fn func(ctx context.Context, a *App) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, args, fn)
		}
	}

	root.AddCommand(
		newListCmd(run),
		newShowCmd(run),
		newCreateCmd(run),
		newEditCmd(run),
		newDeleteCmd(run),
		&cobra.Command{
			Use:   "stats",
			Short: "Show counters for local characters and the first remote page",
			Args:  cobra.NoArgs,
			RunE:  run(func(ctx context.Context, a *App) error { return a.Stats(ctx) }),
		},
		newClearCmd(run),
		newExportCmd(run),
		&cobra.Command{
			Use:   "backup",
			Short: "Upload an export of the local characters to S3",
			Args:  cobra.NoArgs,
			RunE:  run(func(ctx context.Context, a *App) error { return a.Backup(ctx) }),
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  run(func(ctx context.Context, a *App) error { return a.REPL(ctx) }),
		},
		newServeCmd(run),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)
	return root
}

type runFunc func(fn func(ctx context.Context, a *App) error) func(*cobra.Command, []string) error

func runWithApp(cmd *cobra.Command, args []string, fn func(ctx context.Context, a *App) error) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.NoColor = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	a, err := NewApp(ctx, cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn(ctx, "failed to close database", "error", err)
		}
	}()

	return fn(ctx, a)
}

func idArg(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid character id %q", args[0])
	}
	return id, nil
}

func newListCmd(run runFunc) *cobra.Command {
	var (
		opts           ListOptions
		status, gender string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local characters and one page of the remote catalog",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(func(ctx context.Context, a *App) error {
		f := ParseFormFlags("", status, "", gender, "")
		opts.Filters.Status = f.Status
		opts.Filters.Gender = f.Gender
		return a.List(ctx, opts)
	})

	fs := cmd.Flags()
	fs.StringVar(&opts.Search, "search", "", "search by name")
	fs.IntVar(&opts.Page, "page", 1, "remote page number")
	fs.StringVar(&status, "status", "", "filter by status")
	fs.StringVar(&opts.Filters.Species, "species", "", "filter by species")
	fs.StringVar(&gender, "gender", "", "filter by gender")
	fs.StringVar(&opts.SortBy, "sort", "", `sort order: "name" or empty for source order`)
	fs.BoolVar(&opts.LocalOnly, "local", false, "list only local characters, without contacting the API")
	return cmd
}

func newShowCmd(run runFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, a *App) error { return a.Show(ctx, id) })(c, args)
	}
	return cmd
}

func newCreateCmd(run runFunc) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a local character",
		Long:  "Create a local character. Missing fields are prompted for when input is a terminal.",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(func(ctx context.Context, a *App) error { return a.Create(ctx, ff.form(cmd.Flags())) })
	ff.register(cmd.Flags())
	return cmd
}

func newEditCmd(run runFunc) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a local character",
		Long:  "Edit a local character. Without field flags every field is prompted for when input is a terminal.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, a *App) error { return a.Edit(ctx, id, ff.form(c.Flags())) })(c, args)
	}
	ff.register(cmd.Flags())
	return cmd
}

func newDeleteCmd(run runFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a local character",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, a *App) error { return a.Delete(ctx, id, yes) })(c, args)
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newClearCmd(run runFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all local characters and reset the id counter",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(func(ctx context.Context, a *App) error { return a.Clear(ctx, yes) })
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newExportCmd(run runFunc) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export local characters as JSON",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = run(func(ctx context.Context, a *App) error { return a.Export(ctx, out) })
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" or empty for standard output`)
	return cmd
}

func newServeCmd(run runFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE:  run(func(ctx context.Context, a *App) error { return a.Serve(ctx) }),
	}
	// read by config.LoadConfig
	cmd.Flags().String("listen", "", "HTTP API listen address")
	return cmd
}

// Execute runs the command tree for args.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd(args)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
