// Package epctx implements the context-cache protocol: persisting a
// compiled NPU context binary inside a PGC graph so a later load can
// skip compilation, and reading it back out.
package epctx

import (
	"strings"

	"github.com/strataml/strata/internal/graph"
)

// ContextOpType is the operator type that marks a context node.
const ContextOpType = "EPContext"

// ContextDomain is the operator domain context nodes are created in.
const ContextDomain = "strata.npu"

// Context-node attribute keys.
const (
	AttrEmbedMode      = "embed_mode"       // int 0/1: payload inline vs external file
	AttrCachePayload   = "cache_payload"    // bytes (inline) or string (external filename)
	AttrIsMain         = "is_main"          // int 0/1: session's primary node
	AttrMaxScratchSize = "max_scratch_size" // int64: worst-case spill-fill memory
	AttrSDKVersion     = "sdk_version"      // string: compiling toolchain version
	AttrPartitionName  = "partition_name"   // string
	AttrSourceTag      = "source_tag"       // string: backend family, case-insensitive
)

// SourceTag is written on every context node this backend produces.
const SourceTag = "StrataNPU"

// IsContextNode reports whether the node is a context node whose source
// tag identifies this backend family. The tag comparison is
// case-insensitive; both the full provider tag and the short family
// name are accepted.
func IsContextNode(n *graph.Node) bool {
	if n == nil || n.OpType != ContextOpType {
		return false
	}
	switch strings.ToLower(n.AttrString(AttrSourceTag, "")) {
	case "stratanpu", "npu":
		return true
	default:
		return false
	}
}

// singleContextNode enforces the structural invariant that a fused
// partition holds exactly one node and that node is a context node.
func singleContextNode(p *graph.Partition) (*graph.Node, error) {
	if p == nil || p.Graph == nil || len(p.Graph.Nodes) != 1 {
		return nil, ErrMalformedPartition
	}
	n := p.Graph.Nodes[0]
	if !IsContextNode(n) {
		return nil, ErrMalformedPartition
	}
	return n, nil
}
