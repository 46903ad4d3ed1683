package epctx

import "errors"

var (
	// ErrMalformedPartition: a fused partition does not hold exactly one
	// context node. Structural, never retried.
	ErrMalformedPartition = errors.New("epctx: partition must contain exactly one context node")

	// ErrNoMainContext: no context node in the graph carries is_main=1.
	ErrNoMainContext = errors.New("epctx: no context node with is_main=1")

	// ErrPathNotRelative / ErrPathTraversal: security rejections for the
	// external cache reference. Never silently corrected.
	ErrPathNotRelative = errors.New("epctx: cache reference must be a relative path")
	ErrPathTraversal   = errors.New("epctx: cache reference must not point outside the model directory")

	// ErrCacheFileNotFound / ErrEmptyCacheFile: the external cache file
	// is missing, not a regular file, or has no content.
	ErrCacheFileNotFound = errors.New("epctx: cache file does not exist or is not a regular file")
	ErrEmptyCacheFile    = errors.New("epctx: empty cache file")

	// ErrMissingCompiledGraph: a target partition has no compiled-graph
	// record to pull tensor metadata from. Caller-side inconsistency.
	ErrMissingCompiledGraph = errors.New("epctx: no compiled graph record for partition")

	// ErrInvalidGraph wraps every backend-loader failure. Hard external
	// contract: callers detect a stale or incompatible cache by this
	// exact error, distinct from any internal fault.
	ErrInvalidGraph = errors.New("epctx: failed to load from context model")
)
