package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/repositories"
	"github.com/desertthunder/stylefy/internal/services"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/desertthunder/stylefy/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	loadConfig bool
	logger     *log.Logger
	output     io.Writer
	palette    *formatter.Palette
	library    services.Library
	db         *sql.DB
	now        func() time.Time

	mu sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Library and DB replace the Spotify client and the configured database when set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Palette    *formatter.Palette
	Library    services.Library
	DB         *sql.DB
}

// NewRunner creates a new Runner. Without a Config the file named by --config is loaded before each command.
func NewRunner(opts RunnerOpts) *Runner {
	loadConfig := opts.Config == nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
		if opts.Palette == nil {
			opts.Palette = formatter.Terminal
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		loadConfig: loadConfig,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    opts.Palette,
		library:    opts.Library,
		db:         opts.DB,
		now:        time.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, genresCommand, organizeCommand, dedupeCommand, historyCommand, removeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies global flags and loads the configuration.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); cmd.IsSet("config") || r.configPath == "" {
		r.configPath = path
	}
	if !r.loadConfig {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := shared.ApplyEnv(r.config, cmd.String("env-file")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// saveTokens stores token in the config and writes it to the config file, if one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// spotifyLibrary returns the injected library or builds an authenticated, rate-limited Spotify client.
func (r *Runner) spotifyLibrary(ctx context.Context) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	auth, err := services.NewSpotifyAuth(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}
	auth.SetTokenRefreshCallback(func(token *oauth2.Token) {
		r.logger.Debug("access token refreshed", "expiry", token.Expiry)
		if err := r.saveTokens(token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		}
	})

	client, err := auth.HTTPClient(ctx, r.config.Credentials.Spotify.Token(), r.config.Organizer.RateLimit)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w: run 'stylefy auth' first", err)
		}
		return nil, err
	}

	r.library = services.NewSpotifyLibrary(client)
	return r.library, nil
}

func (r *Runner) engine(ctx context.Context) (*tasks.GenreEngine, error) {
	library, err := r.spotifyLibrary(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewGenreEngine(library, r.logger, r.config.Organizer.WorkerCount()), nil
}

// database returns the run history database and a function that releases it.
func (r *Runner) database() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// recordRun stores a finished organize or dedupe invocation. Failures are logged and do not fail the command.
func (r *Runner) recordRun(command string, startedAt time.Time, lines []string, runErr error) {
	db, release, err := r.database()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer release()

	run := models.NewRun(0, command, startedAt)
	run.SetLines(lines)
	run.Finish(r.now(), runErr)

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run", "command", command, "error", err)
		return
	}
	r.logger.Debug("run recorded", "id", run.ID(), "sequence", run.Sequence())
}

// watchProgress logs engine progress at debug level. The returned stop function must be called after the operation.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
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

func (r *Runner) write(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writePartial prints what a failed command got done. The command error wins, so a write failure is only logged.
func (r *Runner) writePartial(data []byte) {
	if err := r.write(data); err != nil {
		r.logger.Warn("failed to write partial output", "error", err)
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.write([]byte(fmt.Sprintf(format, args...)))
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.write([]byte("\n" + fmt.Sprintf(format, args...) + "\n"))
}
