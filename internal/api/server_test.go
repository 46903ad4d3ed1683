package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
)

// writeCachedModel packs a one-partition embedded context model under dir.
func writeCachedModel(t *testing.T, dir, name string, blob []byte) {
	t.Helper()

	partName := epctx.SourceTag + "_graph_0"
	p := &graph.Partition{Index: 0, Name: partName, Graph: &graph.Graph{Name: partName}}
	enc := &epctx.Encoder{
		Models: backend.Table{
			partName: &backend.CompiledGraph{
				InputNames:  []string{"x"},
				OutputNames: []string{"y"},
				Tensors: map[string]graph.TensorInfo{
					"x": {DataType: graph.DTFloat32, Shape: []int64{1}},
					"y": {DataType: graph.DTFloat32, Shape: []int64{1}},
				},
			},
		},
	}
	g := &graph.Graph{Name: name}
	opts := epctx.EncodeOptions{EmbedMode: true, SDKVersion: "2.31.0"}
	if err := enc.EncodeSession(g, blob, []*graph.Partition{p}, 64, opts); err != nil {
		t.Fatalf("encode: %v", err)
	}
	m := &graph.Model{Manifest: graph.Manifest{Producer: "strata"}, Graph: g}
	if err := m.Save(filepath.Join(dir, name+".pgc")); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func newTestEcho(t *testing.T, dir string) *echo.Echo {
	t.Helper()
	e := echo.New()
	NewServer(dir, nil).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, t.TempDir())
	rec := do(t, e, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestListAndGetModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCachedModel(t, dir, "resnet_ctx", []byte("compiled"))
	e := newTestEcho(t, dir)

	listRec := do(t, e, http.MethodGet, "/v1/models")
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status: %d", listRec.Code)
	}
	if !strings.Contains(listRec.Body.String(), `"resnet_ctx"`) {
		t.Fatalf("list body: %s", listRec.Body.String())
	}

	getRec := do(t, e, http.MethodGet, "/v1/models/resnet_ctx")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: %d body=%s", getRec.Code, getRec.Body.String())
	}
	var resp modelResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Manifest.Producer != "strata" {
		t.Fatalf("manifest producer: %q", resp.Manifest.Producer)
	}
	if len(resp.Contexts) != 1 || !resp.Contexts[0].IsMain || !resp.Contexts[0].EmbedMode {
		t.Fatalf("contexts: %+v", resp.Contexts)
	}
	if resp.Contexts[0].MaxScratchSize != 64 {
		t.Fatalf("max scratch size: %d", resp.Contexts[0].MaxScratchSize)
	}
}

func TestGetModelNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, t.TempDir())
	rec := do(t, e, http.MethodGet, "/v1/models/absent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetModelRejectsTraversalName(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t, t.TempDir())
	rec := do(t, e, http.MethodGet, "/v1/models/..%5Cescape")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestVerifyModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCachedModel(t, dir, "ok_model", []byte("compiled"))
	e := newTestEcho(t, dir)

	rec := do(t, e, http.MethodPost, "/v1/models/ok_model/verify")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", rec.Code, rec.Body.String())
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Contexts != 1 || resp.SpillFillSize != 64 {
		t.Fatalf("verify response: %+v", resp)
	}
	if resp.RequestID == "" {
		t.Fatalf("missing request id")
	}
}
