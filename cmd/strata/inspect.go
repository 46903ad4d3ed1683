package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
)

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show manifest and context-cache summary of a PGC model",
		ArgsUsage: "<model.pgc>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit machine-readable JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("inspect: model path required")
			}
			m, err := graph.Load(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			contexts := epctx.Summarize(m.Graph)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"manifest": m.Manifest,
					"graph":    m.Graph.Name,
					"nodes":    len(m.Graph.Nodes),
					"contexts": contexts,
				})
			}

			fmt.Printf("model:    %s\n", path)
			fmt.Printf("graph:    %s (%d nodes)\n", m.Graph.Name, len(m.Graph.Nodes))
			if m.Manifest.ID != "" {
				fmt.Printf("id:       %s\n", m.Manifest.ID)
				fmt.Printf("producer: %s %s\n", m.Manifest.Producer, m.Manifest.ProducerVersion)
				fmt.Printf("created:  %s\n", m.Manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			}
			if len(contexts) == 0 {
				fmt.Println("contexts: none")
				return nil
			}
			fmt.Printf("contexts: %d\n", len(contexts))
			for _, info := range contexts {
				storage := fmt.Sprintf("embedded (%d bytes)", info.PayloadSize)
				if !info.EmbedMode {
					storage = "file " + info.CacheFile
				}
				role := ""
				if info.IsMain {
					role = " main"
				}
				fmt.Printf("  [%d]%s %s\n", info.Index, role, info.Name)
				fmt.Printf("      storage: %s\n", storage)
				if info.MaxScratchSize > 0 {
					fmt.Printf("      spill-fill: %d bytes\n", info.MaxScratchSize)
				}
				if info.SDKVersion != "" {
					fmt.Printf("      sdk: %s\n", info.SDKVersion)
				}
			}
			return nil
		},
	}
}
