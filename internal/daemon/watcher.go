package daemon

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"aerial/internal/logging"
	"aerial/internal/parsers"
)

// settleDelay is how long a dropped file must stay quiet before ingest.
// Broadcaster files arrive over SMB shares and grow in bursts.
const settleDelay = 2 * time.Second

// runWatcher ingests broadcaster files dropped into the inbox directory.
// The channel is inferred from the filename.
func (d *Daemon) runWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(d.cfg.Paths.BaseDir); err != nil {
		watcher.Close()
		return err
	}

	registry := parsers.NewRegistry(nil, nil, d.loc, 0)
	pending := make(map[string]*time.Timer)
	var mu sync.Mutex

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer watcher.Close()
		for {
			select {
			case <-d.ctx.Done():
				mu.Lock()
				for _, timer := range pending {
					timer.Stop()
				}
				mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				path := event.Name
				if ignoredInboxFile(path) {
					continue
				}
				mu.Lock()
				if timer, exists := pending[path]; exists {
					timer.Reset(settleDelay)
				} else {
					pending[path] = time.AfterFunc(settleDelay, func() {
						mu.Lock()
						delete(pending, path)
						mu.Unlock()
						d.ingestDropped(registry, path)
					})
				}
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn("inbox watch error", logging.Error(err))
			}
		}
	}()

	d.logger.Info("watching inbox", slog.String("dir", d.cfg.Paths.BaseDir))
	return nil
}

func (d *Daemon) ingestDropped(registry *parsers.Registry, path string) {
	if d.ctx.Err() != nil {
		return
	}
	logger := d.logger.With(logging.FieldRunID, uuid.NewString(), slog.String("path", path))

	channelName, ok := registry.InferChannel(path)
	if !ok {
		logger.Warn("cannot infer channel for dropped file")
		return
	}
	result, err := d.runner.IngestFile(d.ctx, path, channelName)
	if err != nil {
		logger.Error("inbox ingest failed", logging.FieldChannel, channelName, logging.Error(err))
		return
	}
	if result == nil {
		logger.Info("dropped file held no usable sessions", logging.FieldChannel, channelName)
		return
	}
	logger.Info("dropped file ingested",
		logging.FieldChannel, channelName,
		slog.Int("total", result.Total),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("deleted", result.Deleted))
}

// ignoredInboxFile filters hidden files and in-progress copies.
func ignoredInboxFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".part", ".tmp", ".crdownload", ".swp":
		return true
	}
	return false
}
