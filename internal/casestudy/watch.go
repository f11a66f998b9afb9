package casestudy

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watch invalidates cached case studies when their files change. It
// blocks until ctx is done. A directory that cannot be watched is logged
// and Watch waits for ctx without watching.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(l.dir); err != nil {
		l.logger.Warn("not watching case studies", zap.String("dir", l.dir), zap.Error(err))
		<-ctx.Done()
		return nil
	}
	l.logger.Debug("watching case studies", zap.String("dir", l.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if !l.matches(name) {
				continue
			}
			l.Invalidate(name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("case study watcher failed", zap.Error(err))
		}
	}
}
