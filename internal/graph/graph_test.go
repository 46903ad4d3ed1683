package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestAttrAccessDefaults(t *testing.T) {
	t.Parallel()

	n := &Node{Name: "n0", OpType: "MatMul"}
	if got := n.AttrInt("missing", 7); got != 7 {
		t.Fatalf("AttrInt default: got %d want 7", got)
	}
	if got := n.AttrString("missing", "fallback"); got != "fallback" {
		t.Fatalf("AttrString default: got %q", got)
	}
	if got := n.AttrBytes("missing"); got != nil {
		t.Fatalf("AttrBytes default: got %v want nil", got)
	}

	n.SetAttr("k_int", IntAttr(42))
	n.SetAttr("k_str", StringAttr("v"))
	n.SetAttr("k_bytes", BytesAttr([]byte{0, 1, 2}))

	if got := n.AttrInt("k_int", 0); got != 42 {
		t.Fatalf("AttrInt: got %d", got)
	}
	if got := n.AttrString("k_str", ""); got != "v" {
		t.Fatalf("AttrString: got %q", got)
	}
	if got := n.AttrBytes("k_bytes"); !bytes.Equal(got, []byte{0, 1, 2}) {
		t.Fatalf("AttrBytes: got %v", got)
	}

	// Type mismatch falls back to the default.
	if got := n.AttrInt("k_str", 9); got != 9 {
		t.Fatalf("AttrInt on string attr: got %d want 9", got)
	}
}

func TestBuildValueInfos(t *testing.T) {
	t.Parallel()

	table := map[string]TensorInfo{
		"a": {DataType: DTFloat32, Shape: []int64{1, 8}},
		"b": {DataType: DTInt64, Shape: []int64{4}},
	}

	infos, err := BuildValueInfos([]string{"b", "a"}, table)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "b" || infos[1].Name != "a" {
		t.Fatalf("order not preserved: %+v", infos)
	}
	if infos[1].Type.DataType != DTFloat32 {
		t.Fatalf("dtype mismatch: %v", infos[1].Type.DataType)
	}

	if _, err := BuildValueInfos([]string{"a", "c"}, table); !errors.Is(err, ErrTensorInfoMissing) {
		t.Fatalf("expected ErrTensorInfoMissing, got %v", err)
	}
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	g := &Graph{Name: "net"}
	n := g.AddNode("n0", "Conv", "",
		[]ValueInfo{{Name: "x", Type: TensorInfo{DataType: DTFloat32, Shape: []int64{1, 3, 224, 224}}}},
		[]ValueInfo{{Name: "y", Type: TensorInfo{DataType: DTFloat32, Shape: []int64{1, 64, 112, 112}}}},
	)
	n.SetAttr("payload", BytesAttr([]byte{0x00, 0xFF, 0x10, 0x7F}))
	n.SetAttr("stride", IntAttr(2))

	path := filepath.Join(t.TempDir(), "net.pgc")
	m := &Model{Manifest: Manifest{Producer: "strata"}, Graph: g}
	if err := m.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if m.Manifest.ID == "" {
		t.Fatalf("save did not assign a manifest ID")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Manifest.ID != m.Manifest.ID {
		t.Fatalf("manifest ID mismatch: got %q want %q", loaded.Manifest.ID, m.Manifest.ID)
	}
	if loaded.Manifest.IRVersion != CurrentIRVersion {
		t.Fatalf("ir version: got %d", loaded.Manifest.IRVersion)
	}
	if len(loaded.Graph.Nodes) != 1 {
		t.Fatalf("node count: got %d", len(loaded.Graph.Nodes))
	}
	ln := loaded.Graph.Nodes[0]
	if ln.OpType != "Conv" || ln.Name != "n0" {
		t.Fatalf("node identity mismatch: %+v", ln)
	}
	if got := ln.AttrBytes("payload"); !bytes.Equal(got, []byte{0x00, 0xFF, 0x10, 0x7F}) {
		t.Fatalf("bytes attr did not round-trip: %v", got)
	}
	if got := ln.AttrInt("stride", 0); got != 2 {
		t.Fatalf("int attr did not round-trip: %d", got)
	}
	if len(ln.Inputs) != 1 || ln.Inputs[0].Type.Shape[3] != 224 {
		t.Fatalf("input declaration did not round-trip: %+v", ln.Inputs)
	}
}
