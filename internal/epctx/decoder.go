package epctx

import (
	"fmt"
	"os"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/graph"
	"github.com/strataml/strata/internal/logger"
)

// Decoder reconstructs context blobs from context nodes and hands them
// to the backend loader.
type Decoder struct {
	Loader backend.ContextLoader
	Log    logger.Logger
}

// DecodeNode extracts the blob from a main context node and hands
// (blob, node name, maxSpillFill) to the backend loader. modelDir is
// the directory holding the model file; external references resolve
// against it and never outside it.
//
// Any loader failure is re-signaled as ErrInvalidGraph: callers rely on
// this exact distinction to tell "stale/incompatible cache" from an
// unrelated internal fault. The blob is returned to the caller, which
// owns it from here on.
func (d *Decoder) DecodeNode(n *graph.Node, modelDir string, maxSpillFill int64) ([]byte, error) {
	if !IsContextNode(n) {
		return nil, fmt.Errorf("%w (node %q is not a context node)", ErrMalformedPartition, nodeName(n))
	}

	blob, err := d.readBlob(n, modelDir)
	if err != nil {
		return nil, err
	}

	if err := d.Loader.LoadContextBinary(blob, n.Name, maxSpillFill); err != nil {
		if d.Log != nil {
			d.Log.Error("backend rejected context binary", "node", n.Name, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	return blob, nil
}

// DecodePartition requires the partition to hold exactly one context
// node and delegates to DecodeNode.
func (d *Decoder) DecodePartition(p *graph.Partition, modelDir string, maxSpillFill int64) ([]byte, error) {
	n, err := singleContextNode(p)
	if err != nil {
		return nil, err
	}
	return d.DecodeNode(n, modelDir, maxSpillFill)
}

func (d *Decoder) readBlob(n *graph.Node, modelDir string) ([]byte, error) {
	if n.AttrInt(AttrEmbedMode, 1) == 1 {
		// Inline payload, no I/O.
		return n.AttrBytes(AttrCachePayload), nil
	}

	ref := n.AttrString(AttrCachePayload, "")
	path, err := ResolveCacheBinaryPath(modelDir, ref)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", ErrCacheFileNotFound, ref)
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCacheFile, ref)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("epctx: read cache file %q: %w", ref, err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCacheFile, ref)
	}
	return blob, nil
}

func nodeName(n *graph.Node) string {
	if n == nil {
		return ""
	}
	return n.Name
}
