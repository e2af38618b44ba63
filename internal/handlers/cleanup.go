package handlers

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileCleanupService removes generated documents from the local output
// directory once they are older than maxAge.
type FileCleanupService struct {
	outputDir string
	maxAge    time.Duration
	interval  time.Duration
	ticker    *time.Ticker
	done      chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

func NewFileCleanupService(outputDir string, maxAge time.Duration) *FileCleanupService {
	return &FileCleanupService{
		outputDir: outputDir,
		maxAge:    maxAge,
		interval:  time.Hour,
		done:      make(chan struct{}),
		now:       time.Now,
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
				fcs.Sweep()
			}
		}
	}()
	log.Println("File cleanup service started")
}

func (fcs *FileCleanupService) Stop() {
	fcs.stopOnce.Do(func() {
		if fcs.ticker != nil {
			fcs.ticker.Stop()
		}
		close(fcs.done)
		log.Println("File cleanup service stopped")
	})
}

// Sweep deletes expired files and the document directories they leave empty.
// It returns the number of files removed.
func (fcs *FileCleanupService) Sweep() int {
	if _, err := os.Stat(fcs.outputDir); os.IsNotExist(err) {
		return 0
	}

	removed := 0
	var dirs []string
	err := filepath.Walk(fcs.outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != fcs.outputDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		if fcs.now().Sub(info.ModTime()) > fcs.maxAge {
			log.Printf("Cleaning up old file: %s", path)
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		log.Printf("Error during cleanup of %s: %v", fcs.outputDir, err)
	}

	// Deepest first so parents empty out after their children.
	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err == nil && len(entries) == 0 {
			os.Remove(dirs[i])
		}
	}
	return removed
}
