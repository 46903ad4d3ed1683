package epctx

import (
	"fmt"

	"github.com/strataml/strata/internal/graph"
)

// HasContextNode reports whether any node of the partition's filtered
// graph is a context node for this backend family.
func HasContextNode(p *graph.Partition) bool {
	if p == nil || p.Graph == nil {
		return false
	}
	for _, n := range p.Graph.Nodes {
		if IsContextNode(n) {
			return true
		}
	}
	return false
}

// AnyHasContextNode is the fast pre-check run before attempting a full
// cache-load pass over the fused partitions.
func AnyHasContextNode(partitions []*graph.Partition) bool {
	for _, p := range partitions {
		if HasContextNode(p) {
			return true
		}
	}
	return false
}

// FindMainContexts collects the indices of partitions whose context
// node carries is_main=1, in scan order. Every partition must hold
// exactly one context node. More than one main is legal: each belongs
// to an independent compilation session sharing this graph.
func FindMainContexts(partitions []*graph.Partition) ([]int, error) {
	var mains []int
	for i, p := range partitions {
		n, err := singleContextNode(p)
		if err != nil {
			return nil, fmt.Errorf("%w (partition %d)", err, i)
		}
		if n.AttrInt(AttrIsMain, 0) == 1 {
			mains = append(mains, i)
		}
	}
	if len(mains) == 0 {
		return nil, ErrNoMainContext
	}
	return mains, nil
}
