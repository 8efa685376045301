package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCacheUsage(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "one"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "two"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	count, size := cacheUsage(dir)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if size != 8 {
		t.Errorf("size = %d, want 8", size)
	}
}

func TestCacheUsageMissingDir(t *testing.T) {
	count, size := cacheUsage(filepath.Join(t.TempDir(), "missing"))
	if count != 0 || size != 0 {
		t.Errorf("cacheUsage on a missing dir = (%d, %d), want (0, 0)", count, size)
	}
}
