package epctx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/graph"
	"github.com/strataml/strata/internal/logger"
)

// EncodeOptions controls one encode session.
type EncodeOptions struct {
	// EmbedMode stores the blob inline in the main context node instead
	// of a sibling .bin file.
	EmbedMode bool

	// OutputModelPath is where the caller will save the container; the
	// external cache binary is derived from it and written next to it.
	OutputModelPath string

	// SDKVersion is the compiling toolchain's build tag, recorded on
	// every context node.
	SDKVersion string

	// ShareBinaries makes every session of a sharing run reference one
	// physical cache binary (registered in the ShareSession).
	ShareBinaries bool

	// StopShare marks the sharing run's last contributor: the one call
	// that actually writes the file and clears the registration.
	StopShare bool
}

// Encoder creates context nodes for freshly compiled partitions.
type Encoder struct {
	// Models holds the compiled-graph record per partition name.
	Models backend.Table

	// Share must be set when EncodeOptions.ShareBinaries is used; one
	// ShareSession spans all encode calls of a sharing run.
	Share *ShareSession

	Log logger.Logger
}

// EncodeSession appends one context node per target partition to g.
// All partitions of a session share a single compiled blob, so only the
// session main (index 0, consistent with the spill-fill reordering on
// load) carries the payload; the rest carry identification only.
func (e *Encoder) EncodeSession(g *graph.Graph, blob []byte, partitions []*graph.Partition, maxSpillFill int64, opts EncodeOptions) error {
	if g == nil {
		return errors.New("epctx: nil target graph")
	}
	if opts.ShareBinaries && e.Share == nil {
		return errors.New("epctx: ShareBinaries requires a ShareSession")
	}

	embedFlag := int64(0)
	if opts.EmbedMode {
		embedFlag = 1
	}

	for index, p := range partitions {
		rec, ok := e.Models[p.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingCompiledGraph, p.Name)
		}
		inputs, err := graph.BuildValueInfos(rec.InputNames, rec.Tensors)
		if err != nil {
			return err
		}
		outputs, err := graph.BuildValueInfos(rec.OutputNames, rec.Tensors)
		if err != nil {
			return err
		}

		node := g.AddNode(p.Name, ContextOpType, ContextDomain, inputs, outputs)
		node.Doc = "context binary cache for partition " + p.Name

		if index == 0 {
			node.SetAttr(AttrIsMain, graph.IntAttr(1))
			node.SetAttr(AttrMaxScratchSize, graph.IntAttr(maxSpillFill))
			if opts.EmbedMode {
				payload := make([]byte, len(blob))
				copy(payload, blob)
				node.SetAttr(AttrCachePayload, graph.BytesAttr(payload))
			} else {
				binName, err := e.storeCacheBinary(blob, p.Name, opts)
				if err != nil {
					return err
				}
				node.SetAttr(AttrCachePayload, graph.StringAttr(binName))
			}
		} else {
			node.SetAttr(AttrIsMain, graph.IntAttr(0))
		}

		node.SetAttr(AttrEmbedMode, graph.IntAttr(embedFlag))
		node.SetAttr(AttrSDKVersion, graph.StringAttr(opts.SDKVersion))
		node.SetAttr(AttrPartitionName, graph.StringAttr(p.Name))
		node.SetAttr(AttrSourceTag, graph.StringAttr(SourceTag))
	}
	return nil
}

// storeCacheBinary derives the external cache filename, applies the
// binary-sharing policy, and writes the blob when this call is the one
// responsible for the physical file. Returns the bare filename stored
// in the node (resolution happens against the model directory on load).
func (e *Encoder) storeCacheBinary(blob []byte, partitionName string, opts EncodeOptions) (string, error) {
	binPath := deriveCacheBinaryPath(opts.OutputModelPath, partitionName)
	binName := filepath.Base(binPath)

	if opts.ShareBinaries {
		if registered := e.Share.BinaryName(); registered == "" {
			e.Share.SetBinaryName(binName)
			if e.Log != nil {
				e.Log.Debug("registered shared cache binary", "session", e.Share.ID(), "file", binName)
			}
		} else {
			// Every container of the sharing run points at the first
			// contributor's file.
			binName = registered
			binPath = filepath.Join(filepath.Dir(binPath), binName)
		}
	}

	// The physical write happens for every session when sharing is off,
	// and exactly once (on the stop-share contributor) when it is on.
	if !opts.ShareBinaries || opts.StopShare {
		if err := os.WriteFile(binPath, blob, 0o644); err != nil {
			return "", fmt.Errorf("epctx: write cache binary %q: %w", binPath, err)
		}
	}

	if opts.ShareBinaries && opts.StopShare {
		e.Share.Reset()
	}
	return binName, nil
}

// deriveCacheBinaryPath builds the default sibling cache path:
// the model path with its extension stripped, the partition name with
// the backend tag removed appended, and a ".bin" suffix.
func deriveCacheBinaryPath(modelPath, partitionName string) string {
	stem := strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
	nameInFile := strings.Replace(partitionName, SourceTag, "", 1)
	return stem + nameInFile + ".bin"
}
