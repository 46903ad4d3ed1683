package epctx

import (
	"fmt"

	"github.com/strataml/strata/internal/graph"
)

// SelectMaxSpillFill returns the largest max_scratch_size declared by
// any main-context partition (absent attribute counts as 0) and swaps
// the entry holding the maximum to the front of mainIndices, in place.
// The largest consumer must be loaded first so the shared spill-fill
// region is sized before dependent sessions attach to it.
//
// Ties keep the first encountered index. An all-zero result is valid:
// no session declared a size.
func SelectMaxSpillFill(partitions []*graph.Partition, mainIndices []int) (int64, error) {
	var maxSize int64
	maxPos := 0
	for pos, idx := range mainIndices {
		if idx < 0 || idx >= len(partitions) {
			return 0, fmt.Errorf("%w (main index %d out of range)", ErrMalformedPartition, idx)
		}
		n, err := singleContextNode(partitions[idx])
		if err != nil {
			return 0, fmt.Errorf("%w (partition %d)", err, idx)
		}
		if size := n.AttrInt(AttrMaxScratchSize, 0); size > maxSize {
			maxSize = size
			maxPos = pos
		}
	}
	if maxPos != 0 {
		mainIndices[0], mainIndices[maxPos] = mainIndices[maxPos], mainIndices[0]
	}
	return maxSize, nil
}
