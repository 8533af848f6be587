package services

import (
	"time"

	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/storage"
)

// FileCleanupService periodically removes stale previews and staged uploads
// from the local store.
type FileCleanupService struct {
	store    *storage.LocalStore
	dirs     []string
	maxAge   time.Duration
	interval time.Duration
	log      *logger.Logger
	ticker   *time.Ticker
	done     chan struct{}
}

func NewFileCleanupService(store *storage.LocalStore, dirs []string, maxAge, interval time.Duration, log *logger.Logger) *FileCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &FileCleanupService{
		store:    store,
		dirs:     dirs,
		maxAge:   maxAge,
		interval: interval,
		log:      log.With("component", "cleanup"),
		done:     make(chan struct{}),
	}
}

func (fcs *FileCleanupService) Start() {
	fcs.ticker = time.NewTicker(fcs.interval)
	go func() {
		for {
			select {
			case <-fcs.done:
				return
			case <-fcs.ticker.C:
				fcs.RunOnce()
			}
		}
	}()
	fcs.log.Info("file cleanup service started", "interval", fcs.interval, "max_age", fcs.maxAge)
}

func (fcs *FileCleanupService) Stop() {
	if fcs.ticker != nil {
		fcs.ticker.Stop()
	}
	close(fcs.done)
	fcs.log.Info("file cleanup service stopped")
}

// RunOnce sweeps every configured directory and returns the number of files
// removed.
func (fcs *FileCleanupService) RunOnce() int {
	removed := 0
	for _, dir := range fcs.dirs {
		n, err := fcs.store.RemoveOlderThan(dir, fcs.maxAge)
		if err != nil {
			fcs.log.Error("cleanup failed", "dir", dir, "error", err)
		}
		if n > 0 {
			fcs.log.Info("cleaned up old files", "dir", dir, "removed", n)
		}
		removed += n
	}
	return removed
}
