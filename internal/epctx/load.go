package epctx

import (
	"fmt"

	"github.com/strataml/strata/internal/graph"
)

// DecodeAll runs the full cache-load pass over a model's fused
// partitions: finds the main context of every recorded session, sizes
// the shared spill-fill region to the worst case, and decodes the mains
// largest-first so the region is allocated before dependent sessions
// attach. Returns the negotiated spill-fill size.
func (d *Decoder) DecodeAll(partitions []*graph.Partition, modelDir string) (int64, error) {
	mains, err := FindMainContexts(partitions)
	if err != nil {
		return 0, err
	}
	maxSpillFill, err := SelectMaxSpillFill(partitions, mains)
	if err != nil {
		return 0, err
	}
	for _, idx := range mains {
		if _, err := d.DecodePartition(partitions[idx], modelDir, maxSpillFill); err != nil {
			return 0, err
		}
	}
	return maxSpillFill, nil
}

// SessionRuns groups context partitions into encode-order session runs:
// the encoder always appends a session's main node first, followed by
// its non-main nodes, so a run is a maximal [main, non-main...] span of
// the scan order. Used by tooling that re-encodes a cached model.
func SessionRuns(partitions []*graph.Partition) ([][]*graph.Partition, error) {
	var runs [][]*graph.Partition
	for i, p := range partitions {
		n, err := singleContextNode(p)
		if err != nil {
			return nil, fmt.Errorf("%w (partition %d)", err, i)
		}
		if n.AttrInt(AttrIsMain, 0) == 1 {
			runs = append(runs, []*graph.Partition{p})
			continue
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("%w (partition %d precedes any main)", ErrNoMainContext, i)
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], p)
	}
	if len(runs) == 0 {
		return nil, ErrNoMainContext
	}
	return runs, nil
}

// Partitions derives the one-context-node-per-partition view from a
// loaded graph: every context node becomes its own fused partition, the
// shape the partitioner would have produced when it fused the graph.
func Partitions(g *graph.Graph) []*graph.Partition {
	if g == nil {
		return nil
	}
	var parts []*graph.Partition
	for _, n := range g.Nodes {
		if !IsContextNode(n) {
			continue
		}
		parts = append(parts, &graph.Partition{
			Index: len(parts),
			Name:  n.Name,
			Graph: &graph.Graph{Name: n.Name, Nodes: []*graph.Node{n}},
		})
	}
	return parts
}
