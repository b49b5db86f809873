package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Convert runs a full setlist.fm → YouTube playlist conversion.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	setlistURL := cmd.StringArg("url")
	dryRun := cmd.Bool("dry-run")
	noCache := cmd.Bool("no-cache")
	showTracks := cmd.Bool("show-tracks")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	reportFile := cmd.String("report")

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

	if quota != nil {
		if remaining, err := quota.Remaining(services.QuotaDailyLimit); err == nil {
			r.logger.Info("quota check", "remaining", remaining)
			if remaining < services.QuotaCostSearch {
				r.writePlain("⚠ YouTube quota nearly exhausted (%d units remaining today)\n\n", remaining)
			}
		}
	}

	engine := tasks.NewConvertEngine(r.source, searcher, playlists, cache, quota)
	options := tasks.ConvertOptions{
		Privacy:  privacy,
		DryRun:   dryRun,
		UseCache: !noCache,
	}

	r.logger.Info("starting conversion", "url", setlistURL, "dry_run", dryRun)
	r.writePlain("Converting setlist...\n")
	r.writePlain("Source: %s\n\n", setlistURL)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		matching := false
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSetlist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.MatchSongs:
				if !matching {
					matching = true
					r.writePlain("\n🔍 Matching songs...\n")
				}
				r.writePlain("   %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.InsertVideos:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, setlistURL, options, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	if reportFile != "" {
		data, csvErr := formatter.ReportToCSV(result.Matches)
		if csvErr != nil {
			r.logger.Warn("failed to render report", "error", csvErr)
		} else if writeErr := formatter.WriteToFile(data, reportFile); writeErr != nil {
			r.logger.Warn("failed to save report", "error", writeErr)
		} else {
			r.logger.Info("match report saved", "file", reportFile)
		}
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	title := "Conversion Complete!"
	if result.DryRun {
		title = "Dry Run Complete (no playlist created)"
	}

	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Setlist: %s at %s (%s)\n", result.Setlist.Artist, result.Setlist.Venue, result.Setlist.Date)
	r.writePlain("Matched: %d/%d songs (%.1f%%)\n", result.MatchedCount, result.TotalSongs, result.MatchPercentage)
	if result.CacheHits > 0 {
		r.writePlain("Cache hits: %d\n", result.CacheHits)
	}
	if showTracks {
		r.writePlain("\n%s", formatter.SetlistToText(result.Setlist))
	}
	if result.PlaylistURL != "" {
		r.writePlain("Playlist: %s\n", result.PlaylistURL)
	}

	r.writePlain("\n%s", formatter.ReportToText(result.Matches))

	return nil
}

// convertCommand handles setlist conversion operations
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a setlist.fm setlist into a YouTube playlist",
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
			&cli.BoolFlag{
				Name:  "show-tracks",
				Usage: "Print the fetched track listing in the summary",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Save the per-song match report as CSV",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Convert,
	}
}
