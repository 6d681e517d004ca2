// Package lifecycle exposes the source-directory watcher as a
// lifecycle.Source.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notesync/pkg/adapters/fs"
)

// ChangeEvent is a debounced batch of changes in the source directories.
type ChangeEvent struct {
	fs.Change
}

func (e ChangeEvent) String() string {
	return fmt.Sprintf("sources changed: %d paths", len(e.Paths))
}

type changeSource struct {
	watcher *fs.Watcher
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits a ChangeEvent per
// debounced batch of the watcher.
func NewSource(w *fs.Watcher) lifecycle.Source {
	return &changeSource{
		watcher: w,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start begins watching. Events is closed when ctx is done.
func (s *changeSource) Start(ctx context.Context) error {
	changes, err := s.watcher.Watch(ctx)
	if err != nil {
		close(s.out)
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-changes:
				if !ok {
					return nil
				}
				select {
				case s.out <- ChangeEvent{Change: c}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
