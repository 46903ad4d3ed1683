package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
	"github.com/strataml/strata/internal/logger"
	"github.com/strataml/strata/internal/version"
)

func embedCmd() *cli.Command {
	var (
		outPath    string
		sdkVersion string
	)

	return &cli.Command{
		Name:      "embed",
		Usage:     "Rewrite a model so its context binaries are stored inline",
		ArgsUsage: "<model.pgc>",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output model path (default: <model>_embedded.pgc)",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "sdk-version",
				Usage:       "override the recorded SDK version",
				Destination: &sdkVersion,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in := cmd.Args().First()
			if in == "" {
				return errors.New("embed: model path required")
			}
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			applySDKVersionConfig(cmd, cfg, &sdkVersion)
			log := newLog()

			out := outPath
			if out == "" {
				out = modelStem(in) + "_embedded.pgc"
			}
			if err := reencodeModel(in, out, true, nil, false, sdkVersion, log); err != nil {
				return err
			}
			log.Info("embedded context model written", "in", in, "out", out)
			return nil
		},
	}
}

func externalizeCmd() *cli.Command {
	var (
		outDir     string
		share      bool
		sdkVersion string
	)

	return &cli.Command{
		Name:      "externalize",
		Usage:     "Rewrite models so context binaries live in sibling .bin files",
		ArgsUsage: "<model.pgc>...",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "out-dir",
				Usage:       "output directory (default: alongside each model)",
				Destination: &outDir,
			},
			&cli.BoolFlag{
				Name:        "share",
				Usage:       "make all given models reference one shared .bin file",
				Destination: &share,
			},
			&cli.StringFlag{
				Name:        "sdk-version",
				Usage:       "override the recorded SDK version",
				Destination: &sdkVersion,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("externalize: at least one model path required")
			}
			if share && cmd.Args().Len() < 2 {
				return errors.New("externalize: --share needs at least two models")
			}
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			applySDKVersionConfig(cmd, cfg, &sdkVersion)
			log := newLog()

			var session *epctx.ShareSession
			if share {
				session = epctx.NewShareSession()
			}
			inputs := cmd.Args().Slice()
			for i, in := range inputs {
				dir := outDir
				if dir == "" {
					dir = filepath.Dir(in)
				}
				out := filepath.Join(dir, filepath.Base(modelStem(in))+"_ext.pgc")
				// With sharing on, the last model is the stop-share
				// contributor: the one call that writes the binary.
				last := share && i == len(inputs)-1
				if err := reencodeModel(in, out, false, session, last, sdkVersion, log); err != nil {
					return err
				}
				log.Info("externalized context model written", "in", in, "out", out)
			}
			return nil
		},
	}
}

// reencodeModel decodes every cached session of the input model and
// re-encodes it into a fresh graph with the requested storage mode.
// Session grouping, spill-fill sizes, and the tensor declarations on
// each node are preserved; sdkVersion, when non-empty, replaces the
// recorded SDK version.
func reencodeModel(inPath, outPath string, embedMode bool, session *epctx.ShareSession, stopShare bool, sdkVersion string, log logger.Logger) error {
	m, err := graph.Load(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	runs, err := epctx.SessionRuns(epctx.Partitions(m.Graph))
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	loader := &backend.CaptureLoader{}
	dec := &epctx.Decoder{Loader: loader, Log: log}
	out := &graph.Graph{Name: m.Graph.Name}

	for ri, run := range runs {
		mainNode := run[0].Graph.Nodes[0]
		scratch := mainNode.AttrInt(epctx.AttrMaxScratchSize, 0)
		blob, err := dec.DecodePartition(run[0], filepath.Dir(inPath), scratch)
		if err != nil {
			return fmt.Errorf("%s: decode %s: %w", inPath, mainNode.Name, err)
		}

		enc := &epctx.Encoder{
			Models: backend.TableFromPartitions(run),
			Share:  session,
			Log:    log,
		}
		sdk := sdkVersion
		if sdk == "" {
			sdk = mainNode.AttrString(epctx.AttrSDKVersion, "")
		}
		opts := epctx.EncodeOptions{
			EmbedMode:       embedMode,
			OutputModelPath: outPath,
			SDKVersion:      sdk,
			ShareBinaries:   session != nil,
			StopShare:       stopShare && ri == len(runs)-1,
		}
		if err := enc.EncodeSession(out, blob, run, scratch, opts); err != nil {
			return fmt.Errorf("%s: encode %s: %w", inPath, mainNode.Name, err)
		}
	}

	model := &graph.Model{
		Manifest: graph.Manifest{
			Producer:        "strata",
			ProducerVersion: version.String(),
		},
		Graph: out,
	}
	return model.Save(outPath)
}

func modelStem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
