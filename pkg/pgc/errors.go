package pgc

import "errors"

var (
	ErrInvalidMagic     = errors.New("invalid PGC magic")
	ErrUnsupportedMajor = errors.New("unsupported PGC major version")
	ErrCorruptFile      = errors.New("corrupt PGC file")
)
