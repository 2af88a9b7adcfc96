package interpreter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchRules recompiles the rule file whenever it changes and hands the new
// interpreter to onReload. An invalid file is logged and the previous
// interpreter stays in use. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that
// replace the file by rename are still seen.
func WatchRules(ctx context.Context, path string, log *zap.Logger, onReload func(*Interpreter)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rules watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	log = log.With(zap.String("rules_file", target))
	log.Info("Watching interpreter rules")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			in, err := reload(target)
			if err != nil {
				log.Warn("Rejected rules reload", zap.Error(err))
				continue
			}
			onReload(in)
			log.Info("Reloaded interpreter rules", zap.Int("intent_tables", len(in.tables)))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Rules watcher error", zap.Error(err))
		}
	}
}

func reload(path string) (*Interpreter, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(rules)
}
