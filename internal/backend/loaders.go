package backend

// CaptureLoader records every blob handed to it. It backs the extract
// and embed-conversion paths and doubles as the test loader.
type CaptureLoader struct {
	Loaded []LoadedContext
}

// LoadedContext is one recorded LoadContextBinary call.
type LoadedContext struct {
	GraphName     string
	SpillFillSize int64
	Blob          []byte
}

func (c *CaptureLoader) Name() string { return Null }

func (c *CaptureLoader) LoadContextBinary(buf []byte, graphName string, spillFillSize int64) error {
	if len(buf) == 0 {
		return ErrEmptyContextBinary
	}
	// Copy: the caller may reuse or unmap the buffer after hand-off.
	blob := make([]byte, len(buf))
	copy(blob, buf)
	c.Loaded = append(c.Loaded, LoadedContext{
		GraphName:     graphName,
		SpillFillSize: spillFillSize,
		Blob:          blob,
	})
	return nil
}

// Find returns the recorded context for a graph name.
func (c *CaptureLoader) Find(graphName string) (LoadedContext, bool) {
	for _, lc := range c.Loaded {
		if lc.GraphName == graphName {
			return lc, true
		}
	}
	return LoadedContext{}, false
}

// ValidatingLoader accepts any non-empty blob without retaining it.
// Used by cache verification, where only structural health matters.
type ValidatingLoader struct{}

func (ValidatingLoader) Name() string { return Null }

func (ValidatingLoader) LoadContextBinary(buf []byte, graphName string, spillFillSize int64) error {
	if len(buf) == 0 {
		return ErrEmptyContextBinary
	}
	return nil
}
