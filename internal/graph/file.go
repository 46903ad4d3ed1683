package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/strataml/strata/pkg/pgc"
)

const (
	manifestSectionVersion uint32 = 1
	graphDefSectionVersion uint32 = 1

	// CurrentIRVersion is bumped when the graph JSON schema changes
	// incompatibly.
	CurrentIRVersion = 1
)

var ErrMissingGraphDef = errors.New("graph: missing graph def section")

// Manifest records provenance for a saved model.
type Manifest struct {
	ID              string    `json:"id"`
	Producer        string    `json:"producer"`
	ProducerVersion string    `json:"producer_version,omitempty"`
	IRVersion       int       `json:"ir_version"`
	CreatedAt       time.Time `json:"created_at"`
}

// Model is a graph plus its manifest, the unit a PGC file stores.
type Model struct {
	Manifest Manifest
	Graph    *Graph
}

// Save writes the model as a PGC container at path. A missing manifest
// ID, IR version, or creation time is filled in.
func (m *Model) Save(path string) error {
	if m.Graph == nil {
		return errors.New("graph: nil graph")
	}
	if m.Manifest.ID == "" {
		m.Manifest.ID = uuid.NewString()
	}
	if m.Manifest.IRVersion == 0 {
		m.Manifest.IRVersion = CurrentIRVersion
	}
	if m.Manifest.CreatedAt.IsZero() {
		m.Manifest.CreatedAt = time.Now().UTC()
	}

	manifestData, err := json.Marshal(&m.Manifest)
	if err != nil {
		return fmt.Errorf("graph: encode manifest: %w", err)
	}
	graphData, err := json.Marshal(m.Graph)
	if err != nil {
		return fmt.Errorf("graph: encode graph def: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w, err := pgc.NewWriter(f)
	if err != nil {
		return err
	}
	if err := w.WriteSection(pgc.SectionManifest, manifestSectionVersion, manifestData); err != nil {
		return err
	}
	if err := w.WriteSection(pgc.SectionGraphDef, graphDefSectionVersion, graphData); err != nil {
		return err
	}
	if err := w.Finalise(); err != nil {
		return err
	}
	return f.Close()
}

// Load opens a PGC container and decodes the model out of it.
func Load(path string) (*Model, error) {
	pf, err := pgc.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pf.Close() }()
	return decodeModel(pf)
}

// LoadFrom decodes a model from a random-access reader without mmap.
func LoadFrom(r io.ReaderAt, size int64) (*Model, error) {
	pf, err := pgc.OpenReaderAt(r, size)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pf.Close() }()
	return decodeModel(pf)
}

func decodeModel(pf *pgc.File) (*Model, error) {
	graphSec := pf.Section(pgc.SectionGraphDef)
	if graphSec == nil {
		return nil, ErrMissingGraphDef
	}
	graphData := pf.SectionData(graphSec)
	if len(graphData) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMissingGraphDef)
	}

	var g Graph
	if err := json.Unmarshal(graphData, &g); err != nil {
		return nil, fmt.Errorf("graph: decode graph def: %w", err)
	}

	m := &Model{Graph: &g}

	// The manifest is optional on read: tooling-produced containers may
	// omit it, the graph def alone is a complete model.
	if manSec := pf.Section(pgc.SectionManifest); manSec != nil {
		if data := pf.SectionData(manSec); len(data) > 0 {
			if err := json.Unmarshal(data, &m.Manifest); err != nil {
				return nil, fmt.Errorf("graph: decode manifest: %w", err)
			}
		}
	}
	return m, nil
}
