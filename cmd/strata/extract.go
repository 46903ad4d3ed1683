package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
)

func extractCmd() *cli.Command {
	var outDir string

	return &cli.Command{
		Name:      "extract",
		Usage:     "Write a model's context binaries out as .bin files",
		ArgsUsage: "<model.pgc>",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output directory (default: alongside the model)",
				Destination: &outDir,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("extract: model path required")
			}
			applyCommonConfig(cmd, LoadConfig())
			log := newLog()

			m, err := graph.Load(path)
			if err != nil {
				return fmt.Errorf("extract %s: %w", path, err)
			}
			if outDir == "" {
				outDir = filepath.Dir(path)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			parts := epctx.Partitions(m.Graph)
			loader := &backend.CaptureLoader{}
			dec := &epctx.Decoder{Loader: loader, Log: log}
			if _, err := dec.DecodeAll(parts, filepath.Dir(path)); err != nil {
				return err
			}

			for _, lc := range loader.Loaded {
				dst := filepath.Join(outDir, lc.GraphName+".bin")
				if err := os.WriteFile(dst, lc.Blob, 0o644); err != nil {
					return fmt.Errorf("extract: write %s: %w", dst, err)
				}
				log.Info("extracted context binary", "context", lc.GraphName, "file", dst, "size", len(lc.Blob))
			}
			return nil
		},
	}
}
