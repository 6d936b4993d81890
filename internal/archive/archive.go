// Package archive rotates the paper cache out of the way so the next run
// starts from an empty cache.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
)

// ErrNoCache is returned when there is no cache file to archive.
var ErrNoCache = errors.New("cache file does not exist")

// ArchiveCache moves the cache file into an archive directory next to it,
// named <name>-<timestamp><ext>. It returns the archived path.
func ArchiveCache(cacheFile string, log *zap.Logger) (string, error) {
	log = logger.OrNop(log)

	info, err := os.Stat(cacheFile)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoCache, cacheFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat cache file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cache path is a directory: %s", cacheFile)
	}

	archiveDir := filepath.Join(filepath.Dir(cacheFile), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(cacheFile)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	now := time.Now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405"), ext))

	// Same-second rotations get a sub-second suffix.
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(cacheFile, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive cache file: %w", err)
	}

	log.Info("paper cache archived", zap.String("path", archivePath))
	return archivePath, nil
}
