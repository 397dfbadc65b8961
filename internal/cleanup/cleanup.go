package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wasatext/internal/apipaths"
	"github.com/wasatext/internal/constants"
)

// gracePeriod protects files written moments ago whose URL is not stored yet
const gracePeriod = time.Minute

// PhotoReferences lists the upload URLs still in use
type PhotoReferences interface {
	ReferencedPhotos() (map[string]bool, error)
}

// CleanupResult represents the result of one janitor pass
type CleanupResult struct {
	Scanned  int           `json:"scanned"`
	Removed  []string      `json:"removed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Janitor removes uploaded photos that no user or conversation references
type Janitor struct {
	refs       PhotoReferences
	uploadsDir string
	logger     *slog.Logger
	now        func() time.Time
	scheduler  *cron.Cron
}

// NewJanitor creates a janitor for uploadsDir
func NewJanitor(refs PhotoReferences, uploadsDir string, logger *slog.Logger) *Janitor {
	return &Janitor{
		refs:       refs,
		uploadsDir: uploadsDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs the janitor on a cron schedule ("@hourly", "*/15 * * * *", ...)
func (j *Janitor) Start(schedule string) error {
	if j.scheduler != nil {
		return errors.New("janitor already started")
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.Run(); err != nil {
			j.logger.Error("uploads cleanup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule uploads cleanup: %w", err)
	}

	c.Start()
	j.scheduler = c
	j.logger.Info("uploads janitor scheduled", "schedule", schedule, "dir", j.uploadsDir)
	return nil
}

// Stop halts the schedule. The returned context is done once a running pass finishes.
func (j *Janitor) Stop() context.Context {
	if j.scheduler == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := j.scheduler.Stop()
	j.scheduler = nil
	return ctx
}

// Run performs one cleanup pass
func (j *Janitor) Run() (*CleanupResult, error) {
	start := j.now()
	result := &CleanupResult{Removed: []string{}}

	refs, err := j.refs.ReferencedPhotos()
	if err != nil {
		return nil, fmt.Errorf("load referenced photos: %w", err)
	}

	for _, kind := range []string{constants.UserPhotosDir, constants.GroupPhotosDir} {
		dir := filepath.Join(j.uploadsDir, kind)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			result.Scanned++

			url := path.Join(apipaths.Uploads, kind, entry.Name())
			if refs[url] {
				continue
			}

			info, err := entry.Info()
			if err != nil || start.Sub(info.ModTime()) < gracePeriod {
				continue
			}

			file := filepath.Join(dir, entry.Name())
			if err := os.Remove(file); err != nil {
				j.logger.Warn("failed to remove orphaned upload", "path", file, "error", err)
				result.Failed++
				continue
			}
			result.Removed = append(result.Removed, url)
		}
	}

	result.Duration = j.now().Sub(start)
	if len(result.Removed) > 0 || result.Failed > 0 {
		j.logger.Info("uploads cleanup finished",
			"scanned", result.Scanned,
			"removed", len(result.Removed),
			"failed", result.Failed,
			"duration", result.Duration)
	}
	return result, nil
}
