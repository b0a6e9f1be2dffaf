package worker

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadJanitor removes archived CSV uploads once they pass the retention period
type UploadJanitor struct {
	dir       string
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	stopChan  chan struct{}
}

// NewUploadJanitor creates a new archive cleanup worker
func NewUploadJanitor(dir string, retention, interval time.Duration) *UploadJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &UploadJanitor{
		dir:       dir,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop
func (w *UploadJanitor) Start() {
	log.Printf("Upload janitor started for %s, retention %v, interval %v", w.dir, w.retention, w.interval)
	w.Sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-w.stopChan:
			log.Println("Upload janitor stopped")
			return
		}
	}
}

// Stop stops the cleanup loop
func (w *UploadJanitor) Stop() {
	close(w.stopChan)
}

// Sweep deletes expired .csv files and returns how many were removed
func (w *UploadJanitor) Sweep() int {
	if w.retention <= 0 {
		return 0
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Upload janitor: failed to read %s: %v", w.dir, err)
		}
		return 0
	}

	cutoff := w.now().Add(-w.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("Upload janitor: failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Upload janitor: removed %d expired uploads", removed)
	}
	return removed
}
