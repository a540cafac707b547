// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles local account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the local MovieBox account",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name (defaults to the email)",
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Password, at least 6 characters",
						Sources:  cli.EnvVars(passwordEnv),
						Required: true,
					},
					&cli.StringFlag{
						Name:  "confirm",
						Usage: "Password confirmation (defaults to --password)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Sources:  cli.EnvVars(passwordEnv),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Flags:  outputFlags(),
				Action: r.AuthWhoami,
			},
			{
				Name:  "profile",
				Usage: "Change the display name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "New display name",
						Required: true,
					},
				},
				Action: r.AuthProfile,
			},
			{
				Name:    "preferences",
				Aliases: []string{"prefs"},
				Usage:   "Show or change playback and content preferences",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:  "quality",
						Usage: "Preferred quality (auto, 480p, 720p, 1080p, 4k)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Preferred language code",
					},
					&cli.BoolFlag{
						Name:  "autoplay",
						Usage: "Start playback automatically",
					},
					&cli.BoolFlag{
						Name:  "adult",
						Usage: "Show adult content",
					},
					&cli.BoolFlag{
						Name:  "notifications",
						Usage: "Enable notifications",
					},
					&cli.IntSliceFlag{
						Name:  "genre",
						Usage: "Favorite genre id (repeatable, replaces the list)",
					},
				),
				Action: r.AuthPreferences,
			},
		},
	}
}

// statsCommand shows library statistics
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show collection, watch time and rating statistics",
		Flags:  outputFlags(),
		Action: r.Stats,
	}
}

// importCommand restores a library from a JSON export
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Merge a library.json export (or an export directory) into the library",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Action: r.Import,
	}
}

// tuiCommand returns the top-level TUI command for interactive library management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive library browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/moviebox-tui.log",
			},
		},
		Action: r.TUI,
	}
}
