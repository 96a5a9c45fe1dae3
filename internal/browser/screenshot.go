// internal/browser/screenshot.go
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// SaveScreenshot captures a full-page screenshot into dir with a timestamped
// name and returns the written path.
func SaveScreenshot(ctx context.Context, session schemas.PageSession, dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := session.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("screenshot capture failed: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", time.Now().UTC().Format("20060102T150405"), label)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// CaptureFailureArtifacts grabs a screenshot and an HTML snapshot in parallel
// for post-mortem analysis. Best effort: each artifact fails independently.
func CaptureFailureArtifacts(ctx context.Context, session schemas.PageSession, dir, label string, logger *zap.Logger) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Failed to create artifact directory.", zap.String("dir", dir), zap.Error(err))
		return
	}

	stamp := time.Now().UTC().Format("20060102T150405")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := session.Screenshot(gctx)
		if err != nil {
			logger.Warn("Failure screenshot capture failed.", zap.Error(err))
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, label))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Warn("Failed to write failure screenshot.", zap.Error(err))
			return nil
		}
		logger.Info("Saved failure screenshot.", zap.String("path", path))
		return nil
	})
	g.Go(func() error {
		snap, err := session.CaptureSnapshot(gctx)
		if err != nil {
			logger.Warn("Failure snapshot capture failed.", zap.Error(err))
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", stamp, label))
		if err := os.WriteFile(path, []byte(snap.HTML), 0o644); err != nil {
			logger.Warn("Failed to write failure snapshot.", zap.Error(err))
			return nil
		}
		return nil
	})
	_ = g.Wait()
}
