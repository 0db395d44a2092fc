package main

import (
	"context"
	"fmt"

	"github.com/hazelrye/deepcuts/internal/formatter"
	"github.com/urfave/cli/v3"
)

func curateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "curate",
		Usage:     "Build a discovery playlist from one or more artist ids",
		ArgsUsage: "<artist-id> [artist-id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, text, csv, or markdown",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write csv/markdown output to this path instead of stdout",
			},
		},
		Action: r.Curate,
	}
}

// Curate runs the one-shot pipeline: build a pool per artist, draw the
// playlist, and print or write it in the requested format.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	artistIDs := cmd.Args().Slice()
	if len(artistIDs) == 0 {
		return fmt.Errorf("usage: deepcuts curate <artist-id> [artist-id...]")
	}

	engine, _, err := r.buildEngine()
	if err != nil {
		return err
	}

	r.logger.Infof("curating from %d artists", len(artistIDs))

	playlist, err := engine.Curate(ctx, artistIDs, nil)
	if err != nil {
		return fmt.Errorf("curation failed: %w", err)
	}

	r.logger.Info("curation complete", "tracks", len(playlist.Tracks), "target", playlist.Target)

	switch cmd.String("format") {
	case "json":
		return r.writeJSON(playlist, true)
	case "text":
		data, err := formatter.ExportToText(&playlist)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "csv":
		files, err := formatter.WriteCSVExport(&playlist, cmd.String("output"))
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := r.writePlain("wrote %s\n", f); err != nil {
				return err
			}
		}
		return nil
	case "markdown":
		cover := ""
		if len(playlist.Tracks) > 0 {
			cover = playlist.Tracks[0].ImageURL
		}
		files, err := formatter.WriteMarkdownExport(&playlist, cmd.String("output"), cover)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := r.writePlain("wrote %s\n", f); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}
}
