// Package api serves read-only inspection of PGC context-cache models
// over HTTP: manifest and context-node summaries plus on-demand cache
// verification for a directory of containers.
package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/strataml/strata/internal/backend"
	"github.com/strataml/strata/internal/epctx"
	"github.com/strataml/strata/internal/graph"
	"github.com/strataml/strata/internal/logger"
	"github.com/strataml/strata/internal/version"
)

const containerExt = ".pgc"

type Server struct {
	modelsDir string
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(modelsDir string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		modelsDir: modelsDir,
		log:       log,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/models", s.handleListModels)
	e.GET("/v1/models/:name", s.handleGetModel)
	e.POST("/v1/models/:name/verify", s.handleVerifyModel)
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type modelListEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type modelResponse struct {
	Name     string                  `json:"name"`
	Manifest graph.Manifest          `json:"manifest"`
	Contexts []epctx.ContextNodeInfo `json:"contexts"`
}

type verifyResponse struct {
	Name          string `json:"name"`
	RequestID     string `json:"request_id"`
	OK            bool   `json:"ok"`
	SpillFillSize int64  `json:"spill_fill_size"`
	Contexts      int    `json:"contexts"`
	Error         string `json:"error,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.String(),
	})
}

func (s *Server) handleListModels(c *echo.Context) error {
	entries, err := os.ReadDir(s.modelsDir)
	if err != nil {
		return writeServerError(c, "read models directory: "+err.Error())
	}
	models := make([]modelListEntry, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), containerExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		models = append(models, modelListEntry{
			Name: strings.TrimSuffix(entry.Name(), containerExt),
			Size: info.Size(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleGetModel(c *echo.Context) error {
	path, err := s.modelPath(c.Param("name"))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	m, err := graph.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return writeNotFound(c, "model not found")
		}
		return writeServerError(c, "load model: "+err.Error())
	}
	return c.JSON(http.StatusOK, modelResponse{
		Name:     c.Param("name"),
		Manifest: m.Manifest,
		Contexts: epctx.Summarize(m.Graph),
	})
}

func (s *Server) handleVerifyModel(c *echo.Context) error {
	name := c.Param("name")
	path, err := s.modelPath(name)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	m, err := graph.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return writeNotFound(c, "model not found")
		}
		return writeServerError(c, "load model: "+err.Error())
	}

	resp := verifyResponse{Name: name, RequestID: uuid.NewString()}
	start := s.clock()

	parts := epctx.Partitions(m.Graph)
	resp.Contexts = len(parts)
	dec := &epctx.Decoder{Loader: backend.ValidatingLoader{}, Log: s.log}
	spill, err := dec.DecodeAll(parts, filepath.Dir(path))
	resp.DurationMS = s.clock().Sub(start).Milliseconds()
	if err != nil {
		resp.Error = err.Error()
		s.log.Warn("cache verification failed", "model", name, "request_id", resp.RequestID, "error", err)
		return c.JSON(http.StatusOK, resp)
	}
	resp.OK = true
	resp.SpillFillSize = spill
	return c.JSON(http.StatusOK, resp)
}

// modelPath maps a URL model name to a container path under the served
// directory. Names go through the same relative-path policy as cache
// references, so a crafted name cannot escape the directory.
func (s *Server) modelPath(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty model name")
	}
	return epctx.ResolveCacheBinaryPath(s.modelsDir, name+containerExt)
}
