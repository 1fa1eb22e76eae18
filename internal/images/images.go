// Package images seeds the user data directory with bundled source icons.
package images

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
)

// DefaultPattern selects icon files relative to the bundled directory.
const DefaultPattern = "**/*.{png,jpg,jpeg,gif,ico,svg,bmp,webp}"

// Options configures ValidateDataDirectory.
type Options struct {
	// Pattern is a doublestar pattern; empty means DefaultPattern.
	Pattern string
	Logger  *zap.Logger
}

// Report lists what happened to each matched file, by relative path.
type Report struct {
	Copied   []string
	Skipped  []string
	Rejected []string
}

// ValidateDataDirectory makes sure data exists and holds every bundled
// icon. Files already present in data are left alone so user edits
// survive. Files that match the pattern but are not images are rejected.
func ValidateDataDirectory(ctx context.Context, bundled, data string, opts Options) (Report, error) {
	var report Report

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return report, fmt.Errorf("invalid icon pattern %q", pattern)
	}
	logger := logging.OrNop(opts.Logger)

	if _, err := os.Stat(bundled); err != nil {
		return report, fmt.Errorf("bundled images: %w", err)
	}
	if err := os.MkdirAll(data, 0o755); err != nil {
		return report, fmt.Errorf("create data directory: %w", err)
	}

	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, bundled, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(bundled, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, strings.ToLower(filepath.ToSlash(rel))); !ok {
			return nil
		}

		outcome, err := seed(p, filepath.Join(data, rel))
		if err != nil {
			return fmt.Errorf("seed %s: %w", rel, err)
		}

		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case copied:
			report.Copied = append(report.Copied, rel)
		case skipped:
			report.Skipped = append(report.Skipped, rel)
		case rejected:
			logger.Warn("Ignoring bundled file that is not an image", zap.String("file", rel))
			report.Rejected = append(report.Rejected, rel)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	sort.Strings(report.Copied)
	sort.Strings(report.Skipped)
	sort.Strings(report.Rejected)

	logger.Info("Data directory validated",
		zap.String("data", data),
		zap.Int("copied", len(report.Copied)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("rejected", len(report.Rejected)))
	return report, nil
}

type outcome int

const (
	copied outcome = iota
	skipped
	rejected
)

func seed(src, dst string) (outcome, error) {
	mime, err := mimetype.DetectFile(src)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return rejected, nil
	}

	if _, err := os.Stat(dst); err == nil {
		return skipped, nil
	} else if !os.IsNotExist(err) {
		return 0, err
	}

	if err := copyFile(src, dst); err != nil {
		return 0, err
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
