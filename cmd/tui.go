package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/desertthunder/encore/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for setlist conversion.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	setlistURL := cmd.StringArg("url")
	dryRun := cmd.Bool("dry-run")
	noCache := cmd.Bool("no-cache")

	if setlistURL == "" {
		return fmt.Errorf("%w: setlist URL argument is required", shared.ErrMissingArgument)
	}

	privacy, err := models.ParsePrivacy(cmd.String("privacy"))
	if err != nil {
		return err
	}

	searcher := r.searcher
	playlists := r.playlists
	if searcher == nil || (playlists == nil && !dryRun) {
		yt, err := r.youtubeService(ctx)
		if err != nil {
			return err
		}
		if searcher == nil {
			searcher = yt
		}
		if playlists == nil {
			playlists = yt
		}
	}

	db, cache, quota := r.openLedger()
	if db != nil {
		defer db.Close()
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/encore-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewConvertEngine(r.source, searcher, playlists, cache, quota)
	options := tasks.ConvertOptions{
		Privacy:  privacy,
		DryRun:   dryRun,
		UseCache: !noCache,
	}

	model := ui.NewModel(ctx, r.source, engine, setlistURL, options)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive conversion.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for setlist conversion",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "privacy",
				Aliases: []string{"p"},
				Usage:   "Playlist visibility (private, unlisted, public)",
				Value:   r.config.Playlist.Privacy,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match songs without creating a playlist",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the video match cache",
			},
		},
		Action: r.TUI,
	}
}
