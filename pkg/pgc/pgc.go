// Package pgc implements the Portable Graph Container format.
//
// PGC is a single-file, memory-mappable container for model IR graphs
// and their compiled accelerator artifacts. It describes structure and
// data only and never implies runtime behaviour.
package pgc

// PGC global constants must never change.
const (
	// MagicPGC is the file magic for all PGC containers.
	// It is encoded as "PGC\0".
	MagicPGC = "PGC\x00"

	// Current Major Version: any change indicates a breaking format change.
	CurrentMajor uint16 = 1

	// Current Minor Version: versions may add new optional sections or fields.
	CurrentMinor uint16 = 0
)

type SectionType uint32

const (
	SectionManifest SectionType = 0x0001
	SectionGraphDef SectionType = 0x0002
)

type Header struct {
	Magic            [4]byte
	Major            uint16
	Minor            uint16
	HeaderSize       uint32
	SectionCount     uint32
	SectionDirOffset uint64
	FileSize         uint64
	Flags            uint64
}

func (h *Header) Valid() bool {
	if string(h.Magic[:]) != MagicPGC {
		return false
	}
	if h.HeaderSize < headerSize {
		return false
	}
	if h.SectionCount == 0 {
		return false
	}
	return true
}

func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}

type Section struct {
	Type    uint32
	Version uint32
	Offset  uint64
	Size    uint64
}

func (s *Section) End() uint64 {
	return s.Offset + s.Size
}
