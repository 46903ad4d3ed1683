package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
)

func verifyCmd() *cli.Command {
	var backendName string

	return &cli.Command{
		Name:      "verify",
		Usage:     "Validate that a PGC model's context cache is loadable",
		ArgsUsage: "<model.pgc>...",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "backend to load contexts against (auto, npu, null)",
				Value:       backend.Auto,
				Destination: &backendName,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("verify: at least one model path required")
			}
			applyCommonConfig(cmd, LoadConfig())
			log := newLog()

			name, err := backend.Normalize(backendName)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if name == backend.NPU {
				return errors.New("verify: npu backend is not available on this host")
			}

			var failed bool
			for _, path := range cmd.Args().Slice() {
				m, err := graph.Load(path)
				if err != nil {
					log.Error("load failed", "model", path, "error", err)
					failed = true
					continue
				}
				parts := epctx.Partitions(m.Graph)
				dec := &epctx.Decoder{Loader: backend.ValidatingLoader{}, Log: log}
				spill, err := dec.DecodeAll(parts, filepath.Dir(path))
				if err != nil {
					log.Error("cache verification failed", "model", path, "error", err)
					failed = true
					continue
				}
				log.Info("cache ok", "model", path, "contexts", len(parts), "spill_fill", spill)
			}
			if failed {
				return errors.New("verify: one or more models failed")
			}
			fmt.Println("ok")
			return nil
		},
	}
}
