package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// outRoot is where commands drop artifacts when no explicit path is given.
// AGVIS_OUT_DIR overrides the default.
func outRoot() string {
	if v := strings.TrimSpace(os.Getenv("AGVIS_OUT_DIR")); v != "" {
		return v
	}
	return ".agvis"
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// slugify flattens a process or app name into a filename-safe token.
func slugify(input string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(input) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '.', ch == '_', ch == '-':
			b.WriteRune(ch)
		case ch == ' ', ch == '\t':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

// sanitizeBaselineName keeps baseline keys path-safe while preserving
// readable separators.
func sanitizeBaselineName(input string) string {
	var b strings.Builder
	for _, ch := range input {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '_', ch == '-':
			b.WriteRune(ch)
		case ch == ' ', ch == '/', ch == ':':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "baseline"
	}
	return b.String()
}

func timestampCompact() string {
	return time.Now().UTC().Format("20060102-150405")
}

func readStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating dir for %s: %w", dst, err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}
