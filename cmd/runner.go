package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/library"
	"github.com/desertthunder/moviebox/internal/repositories"
	"github.com/desertthunder/moviebox/internal/services"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"github.com/desertthunder/moviebox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      storage.Store
	users      identity.UserStore
	auth       *identity.AuthService
	lib        *library.Library
	tmdb       services.MetadataService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.LibraryEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      storage.Store
	Users      identity.UserStore // accounts; derived from Store when it is a SQLiteStore
	Metadata   services.MetadataService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Users == nil {
		if s, ok := opts.Store.(*storage.SQLiteStore); ok {
			opts.Users = repositories.NewUserRepository(s.DB())
		}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		users:      opts.Users,
		auth:       identity.NewAuthService(opts.Users, opts.Store, opts.Logger),
		tmdb:       opts.Metadata,
		httpClient: opts.HTTPClient,
		output:     opts.Output,
	}
	r.SetLogger(opts.Logger)
	return r
}

// SetLogger replaces the logger and rebuilds the library and task engine around it.
// The auth service and its session are kept.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.lib = library.New(r.store, r.auth, logger)
	r.engine = tasks.NewLibraryEngine(r.lib, r.tmdb, r.auth, logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, savedCommand, listsCommand, progressCommand,
		rateCommand, statsCommand, playCommand, exportCommand, importCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireAuth fails with [shared.ErrNotAuthenticated] unless someone is signed in.
func (r *Runner) requireAuth() error {
	if !r.auth.IsAuthenticated() {
		return fmt.Errorf("%w: run 'moviebox auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// requireMetadata fails with [shared.ErrServiceUnavailable] when no TMDB credentials are configured.
func (r *Runner) requireMetadata() error {
	if r.tmdb == nil {
		return fmt.Errorf("%w: TMDB service not initialized (set credentials.tmdb.api_key or %s)",
			shared.ErrServiceUnavailable, shared.TMDBAPIKeyEnv)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// outputFlags are the --json and --pretty flags shared by read commands.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}
