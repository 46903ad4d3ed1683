package epctx

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveCacheBinaryPath(t *testing.T) {
	t.Parallel()

	base := filepath.Join("models", "prod")

	ok := []struct {
		ref  string
		want string
	}{
		{"ctx.bin", filepath.Join(base, "ctx.bin")},
		{"./ctx.bin", filepath.Join(base, "ctx.bin")},
		{"sub/ctx.bin", filepath.Join(base, "sub", "ctx.bin")},
		{"sub\\ctx.bin", filepath.Join(base, "sub", "ctx.bin")},
		{"sub/./ctx.bin", filepath.Join(base, "sub", "ctx.bin")},
	}
	for _, tc := range ok {
		got, err := ResolveCacheBinaryPath(base, tc.ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %q: got %q want %q", tc.ref, got, tc.want)
		}
	}
}

func TestResolveCacheBinaryPathRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  string
		want error
	}{
		{"", ErrPathNotRelative},
		{"/etc/passwd", ErrPathNotRelative},
		{"\\\\server\\share\\ctx.bin", ErrPathNotRelative},
		{"C:\\windows\\ctx.bin", ErrPathNotRelative},
		{"c:/ctx.bin", ErrPathNotRelative},
		{"..", ErrPathTraversal},
		{"../ctx.bin", ErrPathTraversal},
		{"sub/../ctx.bin", ErrPathTraversal},
		{"sub/../../ctx.bin", ErrPathTraversal},
		{"..\\ctx.bin", ErrPathTraversal},
		{"sub\\..\\..\\ctx.bin", ErrPathTraversal},
		{"a/b/../../../ctx.bin", ErrPathTraversal},
	}
	for _, tc := range cases {
		if _, err := ResolveCacheBinaryPath("base", tc.ref); !errors.Is(err, tc.want) {
			t.Fatalf("resolve %q: got %v want %v", tc.ref, err, tc.want)
		}
	}
}

func TestResolveCacheBinaryPathInteriorDotDotName(t *testing.T) {
	t.Parallel()

	// "..bin" is a legal file name, not a traversal segment.
	got, err := ResolveCacheBinaryPath("base", "sub/..bin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join("base", "sub", "..bin") {
		t.Fatalf("resolve: got %q", got)
	}
}
