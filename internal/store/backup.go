package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Backup periodically copies the SQLite file aside and prunes old
// copies. The credential store is small, so a plain file copy between
// writes is good enough.
type Backup struct {
	dbPath    string
	dir       string
	interval  time.Duration
	retention time.Duration
	logger    zerolog.Logger
}

// NewBackup configures a backup loop for the database at dbPath.
func NewBackup(dbPath, dir string, interval, retention time.Duration, logger zerolog.Logger) *Backup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Backup{
		dbPath:    dbPath,
		dir:       dir,
		interval:  interval,
		retention: retention,
		logger:    logger.With().Str("component", "backup").Logger(),
	}
}

// Run takes an immediate backup and then repeats on the interval until
// the context is cancelled.
func (b *Backup) Run(ctx context.Context) {
	b.logger.Info().Str("dir", b.dir).Dur("interval", b.interval).Msg("backup loop started")

	if err := b.Take(); err != nil {
		b.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Take(); err != nil {
				b.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			b.prune()
		}
	}
}

// Take copies the database file into the backup directory.
func (b *Backup) Take() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("concierge_%s.db", time.Now().Format("20060102_150405"))
	dest := filepath.Join(b.dir, name)

	src, err := os.Open(b.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}

	b.logger.Info().Str("path", dest).Msg("backup written")
	return nil
}

// prune deletes backups older than the retention window.
func (b *Backup) prune() {
	if b.retention <= 0 {
		return
	}

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		b.logger.Error().Err(err).Msg("read backup dir failed")
		return
	}

	cutoff := time.Now().Add(-b.retention)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			b.logger.Info().Str("file", e.Name()).Msg("pruning old backup")
			_ = os.Remove(filepath.Join(b.dir, e.Name()))
		}
	}
}
