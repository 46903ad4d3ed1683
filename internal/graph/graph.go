// Package graph holds the IR data model stored inside PGC containers:
// a flat node list with typed attributes, plus the fused-partition view
// the context-cache layer operates on.
package graph

import (
	"errors"
	"fmt"
)

var ErrTensorInfoMissing = errors.New("graph: tensor info not found")

// DataType identifies a tensor element type.
type DataType uint32

const (
	DTUndefined DataType = iota
	DTFloat32
	DTFloat16
	DTBFloat16
	DTInt8
	DTInt16
	DTInt32
	DTInt64
	DTUint8
	DTUint16
	DTUint32
	DTUint64
	DTBool
)

func (d DataType) String() string {
	switch d {
	case DTFloat32:
		return "f32"
	case DTFloat16:
		return "f16"
	case DTBFloat16:
		return "bf16"
	case DTInt8:
		return "i8"
	case DTInt16:
		return "i16"
	case DTInt32:
		return "i32"
	case DTInt64:
		return "i64"
	case DTUint8:
		return "u8"
	case DTUint16:
		return "u16"
	case DTUint32:
		return "u32"
	case DTUint64:
		return "u64"
	case DTBool:
		return "bool"
	default:
		return "undefined"
	}
}

// TensorInfo describes a tensor's element type and shape.
type TensorInfo struct {
	DataType DataType `json:"data_type"`
	Shape    []int64  `json:"shape,omitempty"`
}

// ValueInfo is a named tensor declaration (a graph or node input/output).
type ValueInfo struct {
	Name string     `json:"name"`
	Type TensorInfo `json:"type"`
}

// AttrType discriminates the value slot of an Attribute.
type AttrType string

const (
	AttrInt    AttrType = "int"
	AttrFloat  AttrType = "float"
	AttrString AttrType = "string"
	AttrBytes  AttrType = "bytes"
	AttrInts   AttrType = "ints"
)

// Attribute is a typed node attribute. Exactly one value slot is
// meaningful, selected by Type. Bytes round-trip byte-for-byte through
// JSON (base64 on the wire).
type Attribute struct {
	Type  AttrType `json:"type"`
	Int   int64    `json:"i,omitempty"`
	Float float64  `json:"f,omitempty"`
	Str   string   `json:"s,omitempty"`
	Bytes []byte   `json:"b,omitempty"`
	Ints  []int64  `json:"ints,omitempty"`
}

func IntAttr(v int64) Attribute     { return Attribute{Type: AttrInt, Int: v} }
func FloatAttr(v float64) Attribute { return Attribute{Type: AttrFloat, Float: v} }
func StringAttr(v string) Attribute { return Attribute{Type: AttrString, Str: v} }
func BytesAttr(v []byte) Attribute  { return Attribute{Type: AttrBytes, Bytes: v} }
func IntsAttr(v []int64) Attribute  { return Attribute{Type: AttrInts, Ints: v} }

// Node is one operator instance. Inputs and Outputs carry full tensor
// declarations so a node remains meaningful outside its parent graph.
type Node struct {
	Name    string               `json:"name"`
	OpType  string               `json:"op_type"`
	Domain  string               `json:"domain,omitempty"`
	Doc     string               `json:"doc,omitempty"`
	Inputs  []ValueInfo          `json:"inputs,omitempty"`
	Outputs []ValueInfo          `json:"outputs,omitempty"`
	Attrs   map[string]Attribute `json:"attrs,omitempty"`
}

// AttrInt returns the int attribute for key, or def if the key is
// absent or holds a different type.
func (n *Node) AttrInt(key string, def int64) int64 {
	if a, ok := n.Attrs[key]; ok && a.Type == AttrInt {
		return a.Int
	}
	return def
}

// AttrString returns the string attribute for key, or def if the key is
// absent or holds a different type.
func (n *Node) AttrString(key string, def string) string {
	if a, ok := n.Attrs[key]; ok && a.Type == AttrString {
		return a.Str
	}
	return def
}

// AttrBytes returns the bytes attribute for key, or nil if the key is
// absent or holds a different type.
func (n *Node) AttrBytes(key string) []byte {
	if a, ok := n.Attrs[key]; ok && a.Type == AttrBytes {
		return a.Bytes
	}
	return nil
}

func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

func (n *Node) SetAttr(key string, a Attribute) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]Attribute)
	}
	n.Attrs[key] = a
}

// Graph is a flat operator graph.
type Graph struct {
	Name    string      `json:"name"`
	Inputs  []ValueInfo `json:"inputs,omitempty"`
	Outputs []ValueInfo `json:"outputs,omitempty"`
	Nodes   []*Node     `json:"nodes"`
}

// AddNode appends a node and returns it for attribute population.
func (g *Graph) AddNode(name, opType, domain string, inputs, outputs []ValueInfo) *Node {
	n := &Node{
		Name:    name,
		OpType:  opType,
		Domain:  domain,
		Inputs:  inputs,
		Outputs: outputs,
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

// BuildValueInfos resolves a list of tensor names against a tensor-info
// table, preserving order. Every name must be present in the table.
func BuildValueInfos(names []string, table map[string]TensorInfo) ([]ValueInfo, error) {
	out := make([]ValueInfo, 0, len(names))
	for _, name := range names {
		info, ok := table[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrTensorInfoMissing, name)
		}
		out = append(out, ValueInfo{Name: name, Type: info})
	}
	return out, nil
}

// Partition is a fused subgraph view: the filtered graph produced by
// partitioning, identified by its ordinal in the fused-partition list
// and the fused node's name.
type Partition struct {
	Index int
	Name  string
	Graph *Graph
}
