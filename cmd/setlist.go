package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetlistShow fetches a setlist and prints the track listing without
// touching YouTube.
func (r *Runner) SetlistShow(ctx context.Context, cmd *cli.Command) error {
	setlistURL := cmd.StringArg("url")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	markdown := cmd.Bool("markdown")
	outputFile := cmd.String("output")

	if setlistURL == "" {
		return fmt.Errorf("%w: setlist URL argument is required", shared.ErrMissingArgument)
	}

	r.logger.Info("fetching setlist", "url", setlistURL, "source", r.source.Name())

	setlist, err := r.source.FetchSetlist(ctx, setlistURL)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(setlist, pretty)
	}

	var data []byte
	if markdown {
		data = formatter.SetlistToMarkdown(setlist)
	} else {
		data = formatter.SetlistToText(setlist)
	}

	if outputFile != "" {
		if err := formatter.WriteToFile(data, outputFile); err != nil {
			return err
		}
		return r.writePlain("✓ Setlist saved to %s\n", outputFile)
	}

	return r.writePlain("%s", data)
}

// setlistCommand handles setlist inspection operations
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setlist",
		Usage: "Inspect setlist.fm setlists",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Fetch a setlist and print its songs",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "markdown",
						Aliases: []string{"md"},
						Usage:   "Render as Markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
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
				Action: r.SetlistShow,
			},
		},
	}
}
