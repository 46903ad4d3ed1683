package epctx

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ResolveCacheBinaryPath resolves an external cache reference against
// the directory holding the model file. The reference must be relative
// and must not climb above baseDir.
//
// The check is platform-independent: backslashes are treated as
// separators regardless of OS, the reference is rejected if it is
// rooted (slash, backslash, or drive letter), and rejected if any
// segment of the reference, literal or cleaned, is "..". A reference
// like "sub/../x" is refused even though it cleans to a path inside
// baseDir: traversal syntax in adversarial input is rejected, never
// corrected. Pure path computation; the caller performs the existence
// check.
func ResolveCacheBinaryPath(baseDir, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrPathNotRelative)
	}

	logical := strings.ReplaceAll(ref, "\\", "/")
	if strings.HasPrefix(logical, "/") || hasDrivePrefix(logical) {
		return "", fmt.Errorf("%w: %q", ErrPathNotRelative, ref)
	}

	for _, seg := range strings.Split(logical, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrPathTraversal, ref)
		}
	}
	for _, seg := range strings.Split(path.Clean(logical), "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrPathTraversal, ref)
		}
	}

	return filepath.Join(baseDir, filepath.FromSlash(path.Clean(logical))), nil
}

// hasDrivePrefix reports whether the path starts with a Windows drive
// letter ("C:..."). Checked on every platform so a container written on
// one OS is judged identically on another.
func hasDrivePrefix(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
