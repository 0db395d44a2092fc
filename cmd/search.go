package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for artists by name",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// Search queries the catalog for artists matching the query and prints the
// candidates with their ids for use with the curate command.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: deepcuts search <query>")
	}

	engine, _, err := r.buildEngine()
	if err != nil {
		return err
	}

	r.logger.Infof("searching artists matching %q", query)

	artists, err := engine.Search(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	if len(artists) == 0 {
		return r.writePlain("No artists found for %q\n", query)
	}

	for _, artist := range artists {
		if err := r.writePlain("%s  %s\n", artist.ID, artist.Name); err != nil {
			return err
		}
	}
	return nil
}
