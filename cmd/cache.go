package main

import (
	"context"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/services"
	"github.com/urfave/cli/v3"
)

// CacheStats prints counts for the video match cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := repositories.NewVideoRepository(db).Stats()
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(stats, pretty)
	}

	r.writePlainHeader("Video Match Cache")
	r.writePlain("Cached matches: %d\n", stats.Total)
	r.writePlain("Fresh: %d\n", stats.Fresh)
	r.writePlain("Expired: %d\n", stats.Expired)
	r.writePlain("Exact matches: %d\n", stats.Exact)
	r.writePlain("Fuzzy matches: %d\n", stats.Fuzzy)

	return nil
}

// CacheClear empties the video match cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := repositories.NewVideoRepository(db).Clear()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "removed", removed)
	return r.writePlain("✓ Removed %d cached matches\n", removed)
}

// QuotaStatus reports estimated YouTube quota usage for the current day.
func (r *Runner) QuotaStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	quota := repositories.NewQuotaRepository(db)

	used, err := quota.UsedToday()
	if err != nil {
		return err
	}
	remaining, err := quota.Remaining(services.QuotaDailyLimit)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(map[string]int{
			"used":      used,
			"remaining": remaining,
			"limit":     services.QuotaDailyLimit,
		}, pretty)
	}

	r.writePlainHeader("YouTube Quota (estimated)")
	r.writePlain("Used today: %d units\n", used)
	r.writePlain("Remaining: %d of %d units\n", remaining, services.QuotaDailyLimit)
	r.writePlain("\nThe ledger counts this tool's calls only; other API clients\n")
	r.writePlain("on the same project share the daily limit.\n")

	return nil
}

// cacheCommand handles video match cache operations
func cacheCommand(r *Runner) *cli.Command {
	jsonFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the video match cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache counts",
				Flags:  jsonFlags,
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached matches",
				Action: r.CacheClear,
			},
		},
	}
}

// quotaCommand reports quota ledger state
func quotaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "quota",
		Usage: "Show estimated YouTube API quota usage",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.QuotaStatus,
	}
}
