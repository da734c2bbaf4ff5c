// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// command builds the root command. Global flags are inherited by every subcommand.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "stylefy",
		Usage:   "Organize saved Spotify tracks into genre playlists",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file with SPOTIFY_* overrides",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file or the run history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recently applied migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and store the tokens in the config file",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Action: r.Auth,
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "Preview the genre groups of your saved tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min",
				Usage: "Minimum track count; genres with this many tracks or fewer are marked skipped",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Genres,
	}
}

func organizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "organize",
		Usage: "Create or extend one playlist per genre",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min",
				Usage: "Minimum track count; genres with this many tracks or fewer are skipped",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show planned changes without modifying playlists",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Also write a Markdown report to this file",
			},
		},
		Action: r.Organize,
	}
}

func dedupeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Remove repeated tracks from playlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Playlist ID",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Every playlist you own; stops at the first failure",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Dedupe,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past organize and dedupe runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "show",
				Usage: "Run ID to show with its full log",
			},
			&cli.StringFlag{
				Name:  "delete",
				Usage: "Run ID to remove from the history",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.History,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse genres and organize playlists interactively",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min",
				Usage: "Minimum track count when organizing every genre",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show planned changes without modifying playlists",
			},
		},
		Action: r.TUI,
	}
}

func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove every occurrence of the given tracks from a playlist",
		ArgsUsage: "<track URI>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Playlist ID",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Remove,
	}
}
