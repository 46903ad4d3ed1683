package epctx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/strataml/strata/internal/graph"
)

// ctxPartition builds a single-node fused partition holding a context
// node with the given is_main flag and declared scratch size.
func ctxPartition(t *testing.T, index int, isMain bool, scratchSize int64) *graph.Partition {
	t.Helper()

	name := fmt.Sprintf("%s_graph_%d", SourceTag, index)
	n := &graph.Node{Name: name, OpType: ContextOpType, Domain: ContextDomain}
	n.SetAttr(AttrSourceTag, graph.StringAttr(SourceTag))
	n.SetAttr(AttrPartitionName, graph.StringAttr(name))
	if isMain {
		n.SetAttr(AttrIsMain, graph.IntAttr(1))
	} else {
		n.SetAttr(AttrIsMain, graph.IntAttr(0))
	}
	if scratchSize > 0 {
		n.SetAttr(AttrMaxScratchSize, graph.IntAttr(scratchSize))
	}
	return &graph.Partition{
		Index: index,
		Name:  name,
		Graph: &graph.Graph{Name: name, Nodes: []*graph.Node{n}},
	}
}

func TestIsContextNodeSourceTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		opType string
		source string
		want   bool
	}{
		{ContextOpType, "StrataNPU", true},
		{ContextOpType, "stratanpu", true},
		{ContextOpType, "NPU", true},
		{ContextOpType, "SomeOtherProvider", false},
		{ContextOpType, "", false},
		{"Conv", "StrataNPU", false},
	}
	for _, tc := range cases {
		n := &graph.Node{Name: "n", OpType: tc.opType}
		if tc.source != "" {
			n.SetAttr(AttrSourceTag, graph.StringAttr(tc.source))
		}
		if got := IsContextNode(n); got != tc.want {
			t.Fatalf("IsContextNode(op=%q source=%q): got %v want %v", tc.opType, tc.source, got, tc.want)
		}
	}
}

func TestAnyHasContextNode(t *testing.T) {
	t.Parallel()

	plain := &graph.Partition{
		Index: 0,
		Name:  "plain",
		Graph: &graph.Graph{Nodes: []*graph.Node{{Name: "c", OpType: "Conv"}}},
	}
	if AnyHasContextNode([]*graph.Partition{plain}) {
		t.Fatalf("plain partition reported a context node")
	}
	parts := []*graph.Partition{plain, ctxPartition(t, 1, true, 0)}
	if !AnyHasContextNode(parts) {
		t.Fatalf("context partition not detected")
	}
	if AnyHasContextNode(nil) {
		t.Fatalf("empty set reported a context node")
	}
}

func TestFindMainContexts(t *testing.T) {
	t.Parallel()

	parts := []*graph.Partition{
		ctxPartition(t, 0, false, 0),
		ctxPartition(t, 1, true, 0),
		ctxPartition(t, 2, false, 0),
		ctxPartition(t, 3, true, 0),
	}
	mains, err := FindMainContexts(parts)
	if err != nil {
		t.Fatalf("find mains: %v", err)
	}
	if len(mains) != 2 || mains[0] != 1 || mains[1] != 3 {
		t.Fatalf("mains: got %v want [1 3]", mains)
	}
}

func TestFindMainContextsNoMain(t *testing.T) {
	t.Parallel()

	parts := []*graph.Partition{
		ctxPartition(t, 0, false, 0),
		ctxPartition(t, 1, false, 0),
	}
	if _, err := FindMainContexts(parts); !errors.Is(err, ErrNoMainContext) {
		t.Fatalf("expected ErrNoMainContext, got %v", err)
	}
}

func TestFindMainContextsMalformed(t *testing.T) {
	t.Parallel()

	good := ctxPartition(t, 0, true, 0)

	empty := &graph.Partition{Index: 1, Name: "empty", Graph: &graph.Graph{}}
	if _, err := FindMainContexts([]*graph.Partition{good, empty}); !errors.Is(err, ErrMalformedPartition) {
		t.Fatalf("zero nodes: got %v", err)
	}

	two := ctxPartition(t, 2, true, 0)
	two.Graph.Nodes = append(two.Graph.Nodes, &graph.Node{Name: "extra", OpType: "Conv"})
	if _, err := FindMainContexts([]*graph.Partition{good, two}); !errors.Is(err, ErrMalformedPartition) {
		t.Fatalf("two nodes: got %v", err)
	}

	wrongType := &graph.Partition{
		Index: 3,
		Name:  "wrong",
		Graph: &graph.Graph{Nodes: []*graph.Node{{Name: "c", OpType: "Conv"}}},
	}
	if _, err := FindMainContexts([]*graph.Partition{good, wrongType}); !errors.Is(err, ErrMalformedPartition) {
		t.Fatalf("wrong node type: got %v", err)
	}
}

func TestSelectMaxSpillFill(t *testing.T) {
	t.Parallel()

	parts := []*graph.Partition{
		ctxPartition(t, 0, true, 100),
		ctxPartition(t, 1, true, 4096),
		ctxPartition(t, 2, true, 512),
	}
	mains := []int{0, 1, 2}
	maxSize, err := SelectMaxSpillFill(parts, mains)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if maxSize != 4096 {
		t.Fatalf("max size: got %d want 4096", maxSize)
	}
	if mains[0] != 1 {
		t.Fatalf("largest consumer not first: %v", mains)
	}
	// The swap keeps all entries, only reordered.
	if len(mains) != 3 || mains[1] != 0 || mains[2] != 2 {
		t.Fatalf("reorder lost entries: %v", mains)
	}
}

func TestSelectMaxSpillFillTiesAndZeros(t *testing.T) {
	t.Parallel()

	// All zero: valid, no reorder.
	parts := []*graph.Partition{
		ctxPartition(t, 0, true, 0),
		ctxPartition(t, 1, true, 0),
	}
	mains := []int{0, 1}
	maxSize, err := SelectMaxSpillFill(parts, mains)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if maxSize != 0 || mains[0] != 0 || mains[1] != 1 {
		t.Fatalf("all-zero: got size=%d mains=%v", maxSize, mains)
	}

	// Equal sizes: first encountered wins.
	parts = []*graph.Partition{
		ctxPartition(t, 0, true, 256),
		ctxPartition(t, 1, true, 256),
	}
	mains = []int{0, 1}
	if _, err := SelectMaxSpillFill(parts, mains); err != nil {
		t.Fatalf("select: %v", err)
	}
	if mains[0] != 0 {
		t.Fatalf("tie-break should keep first encountered: %v", mains)
	}
}

func TestSelectMaxSpillFillPropagatesScanErrors(t *testing.T) {
	t.Parallel()

	empty := &graph.Partition{Index: 0, Name: "empty", Graph: &graph.Graph{}}
	if _, err := SelectMaxSpillFill([]*graph.Partition{empty}, []int{0}); !errors.Is(err, ErrMalformedPartition) {
		t.Fatalf("expected ErrMalformedPartition, got %v", err)
	}
	if _, err := SelectMaxSpillFill(nil, []int{5}); !errors.Is(err, ErrMalformedPartition) {
		t.Fatalf("out-of-range index: got %v", err)
	}
}
