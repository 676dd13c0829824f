package live

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/engineer"
)

// compoundWatcher reloads the compound table whenever the file changes.
// The directory is watched so that editors replacing the file are noticed.
type compoundWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	out     chan *engineer.CompoundTable
	l       *log.Logger
}

func newCompoundWatcher(path string) (*compoundWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("compound watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("compound watcher: %w", err)
	}
	return &compoundWatcher{
		path:    abs,
		watcher: w,
		out:     make(chan *engineer.CompoundTable, 1),
		l:       log.Default().Named("compounds"),
	}, nil
}

// Updates delivers freshly loaded tables. Only the latest pending table is kept.
func (c *compoundWatcher) Updates() <-chan *engineer.CompoundTable {
	return c.out
}

// run processes file events until ctx is done.
func (c *compoundWatcher) run(ctx context.Context) {
	defer c.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.l.Warn("watch error", log.ErrorField(err))
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != c.path ||
				!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c.reload()
		}
	}
}

func (c *compoundWatcher) reload() {
	table, err := engineer.LoadCompoundsFile(c.path)
	if err != nil {
		c.l.Warn("keeping current compounds",
			log.String("file", c.path), log.ErrorField(err))
		return
	}
	// replace a table not yet picked up
	select {
	case <-c.out:
	default:
	}
	c.out <- table
	c.l.Info("compounds reloaded",
		log.String("file", c.path), log.Int("entries", len(table.Compounds)))
}
