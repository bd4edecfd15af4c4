package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"go.qmcdec.dev/cli/internal/decoder"
)

// watchDir watches inputDir for newly created or written files and
// processes each recognized extension into outputDir, grounded on the
// cmd/um/main.go's watchDir: an fsnotify watcher feeding a
// Create|Write select loop, exclusive-open retried against writers that
// are still mid-copy, cancelled by SIGINT via signal.NotifyContext.
func watchDir(p *processor, inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(inputDir); err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p.logger.Info("watching for changes", zap.String("dir", inputDir))

	for {
		select {
		case <-signalCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(event.Name), "."))
			if _, ok := decoder.FormatFromExtension(ext); !ok {
				continue
			}
			go p.watchProcess(event.Name, outputDir)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watcher error", zap.Error(werr))
		}
	}
}

// watchProcess retries processFile against a file that may still be mid-
// write by another process, matching cmd/um/main.go's exclusive-open retry
// loop in watchDir.
func (p *processor) watchProcess(path, outputDir string) {
	const (
		retries = 5
		delay   = 500 * time.Millisecond
	)
	var err error
	for i := 0; i < retries; i++ {
		if err = exclusiveOpenable(path); err == nil {
			break
		}
		time.Sleep(delay)
	}
	if err != nil {
		p.logger.Error("file never became readable", zap.String("path", path), zap.Error(err))
		return
	}

	if err := p.processFile(path, outputDir); err != nil {
		p.logger.Error("failed to process file", zap.String("path", path), zap.Error(err))
	}
}

// exclusiveOpenable reports whether path can currently be opened, used as
// a cheap proxy for "the writer that created this file has finished".
func exclusiveOpenable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
