// Package backend defines the boundary to the NPU runtime: the context
// loader the decoder hands blobs to, and the compiled-graph records the
// encoder pulls tensor metadata from.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strataml/strata/internal/graph"
)

const (
	NPU  = "npu"
	Null = "null"
	Auto = "auto"
)

var ErrEmptyContextBinary = errors.New("backend: empty context binary")

// ContextLoader rehydrates a backend from a compiled context binary.
// Implementations may block on driver calls; calls are synchronous and
// non-cancelable, callers wanting timeouts wrap the whole operation.
type ContextLoader interface {
	Name() string

	// LoadContextBinary hands the blob to the runtime. graphName is the
	// partition name the blob was compiled for, spillFillSize the
	// worst-case scratch/overlap memory the combined sessions need.
	LoadContextBinary(buf []byte, graphName string, spillFillSize int64) error
}

// CompiledGraph is the record a compilation session keeps per fused
// partition: the tensor declarations needed to rebuild graph I/O.
type CompiledGraph struct {
	InputNames  []string
	OutputNames []string
	Tensors     map[string]graph.TensorInfo
}

// Table maps partition name to its compiled-graph record.
type Table map[string]*CompiledGraph

// TableFromPartitions rebuilds compiled-graph records out of the tensor
// declarations already present on each partition's single node. Used by
// tooling that re-encodes an existing cached model without access to
// the original compilation session.
func TableFromPartitions(partitions []*graph.Partition) Table {
	table := make(Table, len(partitions))
	for _, p := range partitions {
		if p == nil || p.Graph == nil || len(p.Graph.Nodes) != 1 {
			continue
		}
		n := p.Graph.Nodes[0]
		rec := &CompiledGraph{Tensors: make(map[string]graph.TensorInfo, len(n.Inputs)+len(n.Outputs))}
		for _, vi := range n.Inputs {
			rec.InputNames = append(rec.InputNames, vi.Name)
			rec.Tensors[vi.Name] = vi.Type
		}
		for _, vi := range n.Outputs {
			rec.OutputNames = append(rec.OutputNames, vi.Name)
			rec.Tensors[vi.Name] = vi.Type
		}
		table[p.Name] = rec
	}
	return table
}

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case NPU, Null, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, npu, or null)", backend)
	}
}
