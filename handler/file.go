package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/philipp01105/nlog-channels/core"
	"github.com/philipp01105/nlog-channels/formatter"
)

// FileHandler writes log entries to a file with rotation support
type FileHandler struct {
	base
	filename       string
	file           *os.File
	maxSize        int64
	maxAge         time.Duration
	maxBackups     int
	rotateInterval time.Duration
	currentSize    int64
	lastRotateTime time.Time
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	QueueConfig
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Level is the minimum level written (default: DebugLevel)
	Level core.Level
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxAge is the maximum age before rotation (0 = no time rotation)
	MaxAge time.Duration
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
}

// NewFileHandler creates a new file handler. The file and its directory
// are created immediately, so an unwritable path fails here.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", core.ErrInvalidConfiguration)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	h := &FileHandler{
		base:           newBase(cfg.Level, cfg.Formatter),
		filename:       cfg.Filename,
		file:           file,
		maxSize:        cfg.MaxSize,
		maxAge:         cfg.MaxAge,
		maxBackups:     cfg.MaxBackups,
		rotateInterval: cfg.RotateInterval,
		currentSize:    info.Size(),
		lastRotateTime: time.Now(),
	}

	if cfg.Async {
		h.async = newAsyncQueue(cfg.QueueConfig, h.stats, h.write)
	}

	return h, nil
}

// Filename returns the path of the active log file
func (h *FileHandler) Filename() string {
	return h.filename
}

// Handle processes a log entry
func (h *FileHandler) Handle(entry *core.Entry) error {
	if entry.Level < h.level {
		return nil
	}
	if h.async != nil {
		return h.async.enqueue(entry)
	}
	return h.write(entry)
}

// write formats and writes an entry
func (h *FileHandler) write(entry *core.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return os.ErrClosed
	}

	if err := h.rotateIfNeeded(); err != nil {
		return err
	}

	n, err := h.formatLocked(entry, h.file)
	h.currentSize += int64(n)
	if err == nil {
		h.stats.IncrementProcessed()
	}
	return err
}

// rotateIfNeeded checks and performs rotation if needed
func (h *FileHandler) rotateIfNeeded() error {
	needRotate := false

	if h.maxSize > 0 && h.currentSize >= h.maxSize {
		needRotate = true
	}
	if h.maxAge > 0 && time.Since(h.lastRotateTime) >= h.maxAge {
		needRotate = true
	}
	if h.rotateInterval > 0 && time.Since(h.lastRotateTime) >= h.rotateInterval {
		needRotate = true
	}

	if !needRotate {
		return nil
	}

	return h.rotate()
}

// rotate performs the actual file rotation
func (h *FileHandler) rotate() error {
	if err := h.file.Sync(); err != nil {
		return err
	}
	if err := h.file.Close(); err != nil {
		return err
	}

	// Rename current file with timestamp
	timestamp := time.Now().Format("2006-01-02T15-04-05.000000000")
	rotatedName := fmt.Sprintf("%s.%s", h.filename, timestamp)

	if err := os.Rename(h.filename, rotatedName); err != nil {
		// If rename fails, try to reopen the original file
		file, openErr := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			h.file = nil
			return fmt.Errorf("rotation failed: %v, reopen failed: %w", err, openErr)
		}
		h.file = file
		return err
	}

	if h.maxBackups > 0 {
		h.cleanupOldBackups()
	}

	file, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		h.file = nil
		return err
	}

	h.file = file
	h.currentSize = 0
	h.lastRotateTime = time.Now()

	return nil
}

// Backups returns the rotated files that belong to this handler, oldest first
func (h *FileHandler) Backups() []string {
	dir := filepath.Dir(h.filename)
	base := filepath.Base(h.filename)

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return nil
	}

	var backups []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), base+".") {
			backups = append(backups, match)
		}
	}
	// Timestamp suffixes sort chronologically
	sort.Strings(backups)
	return backups
}

// cleanupOldBackups removes old backup files based on MaxBackups
func (h *FileHandler) cleanupOldBackups() {
	backups := h.Backups()
	if len(backups) <= h.maxBackups {
		return
	}
	for _, file := range backups[:len(backups)-h.maxBackups] {
		if err := os.Remove(file); err != nil {
			return
		}
	}
}

// Close drains the async queue, if any, then syncs and closes the file
func (h *FileHandler) Close() error {
	if h.async != nil {
		h.async.close()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	f := h.file
	h.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
