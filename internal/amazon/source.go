package amazon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopctl/shopctl/internal/browser"
	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/profile"
)

// Operation names one domain operation. Snapshot files are keyed by it.
type Operation string

const (
	OpSearch    Operation = "search"
	OpProduct   Operation = "product"
	OpCart      Operation = "cart"
	OpAddToCart Operation = "add-to-cart"
	OpClearCart Operation = "clear-cart"
	OpOrders    Operation = "orders"
)

// NavigateFunc drives a live page through an operation's site-specific
// sequence and returns the final markup the extraction should run on.
type NavigateFunc func(ctx context.Context, sess *browser.PageSession) (string, error)

// Source supplies the markup an extraction runs against: either a live
// browser navigation or a previously captured snapshot. The extraction
// logic never knows which.
type Source interface {
	HTML(ctx context.Context, op Operation, live NavigateFunc) (string, error)
	Name() string
}

// LiveSource runs the real navigation inside a freshly provisioned browser
// session and guarantees its release on every exit path. When capture is
// enabled, the returned markup is also written to a timestamped snapshot;
// that side effect never changes the result.
type LiveSource struct {
	launcher *browser.Launcher
	cookies  func() []profile.Cookie
	domain   func() string
	capture  *SnapshotDir // nil disables capture
}

// NewLiveSource creates a live markup source. cookies and domain are read
// per call so a profile switch between operations takes effect.
func NewLiveSource(launcher *browser.Launcher, cookies func() []profile.Cookie, domain func() string, capture *SnapshotDir) *LiveSource {
	return &LiveSource{launcher: launcher, cookies: cookies, domain: domain, capture: capture}
}

func (s *LiveSource) Name() string { return "live" }

func (s *LiveSource) HTML(ctx context.Context, op Operation, live NavigateFunc) (string, error) {
	sess, err := s.launcher.Open(ctx, s.cookies(), s.domain())
	if err != nil {
		return "", err
	}
	defer sess.Close()

	html, err := live(ctx, sess)
	if err != nil {
		return "", err
	}

	if s.capture != nil {
		if path, cerr := s.capture.Write(op, html); cerr != nil {
			logger.Warn("snapshot capture failed", "operation", op, "error", cerr)
		} else {
			logger.Debug("snapshot captured", "operation", op, "path", path)
		}
	}

	return html, nil
}

// SnapshotSource substitutes the most recent captured snapshot for a live
// navigation, which makes the extraction logic testable without a browser
// or network.
type SnapshotSource struct {
	dir *SnapshotDir
}

// NewSnapshotSource creates a mock markup source reading from dir.
func NewSnapshotSource(dir *SnapshotDir) *SnapshotSource {
	return &SnapshotSource{dir: dir}
}

func (s *SnapshotSource) Name() string { return "snapshot" }

func (s *SnapshotSource) HTML(ctx context.Context, op Operation, _ NavigateFunc) (string, error) {
	html, err := s.dir.Latest(op)
	if err != nil {
		return "", err
	}
	logger.Debug("using snapshot markup", "operation", op)
	return html, nil
}

// SnapshotDir manages timestamped markup captures, named
// <op>-<timestamp>.html.
type SnapshotDir struct {
	dir string
}

// NewSnapshotDir creates a snapshot directory handle.
func NewSnapshotDir(dir string) *SnapshotDir {
	return &SnapshotDir{dir: dir}
}

// Write stores markup for an operation under a timestamped name and
// returns the file path.
func (d *SnapshotDir) Write(op Operation, html string) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s.html", op, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Latest returns the newest snapshot for an operation, by filename (the
// timestamp format sorts lexically).
func (d *SnapshotDir) Latest(op Operation) (string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("%w for %s: %v", ErrNoSnapshot, op, err)
	}

	prefix := string(op) + "-"
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".html") {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w for %s in %s", ErrNoSnapshot, op, d.dir)
	}
	sort.Strings(matches)

	data, err := os.ReadFile(filepath.Join(d.dir, matches[len(matches)-1])) //#nosec G304 -- snapshot dir is configured
	if err != nil {
		return "", err
	}
	return string(data), nil
}
