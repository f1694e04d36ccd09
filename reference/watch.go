// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reference

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pathSource is implemented by sources backed by a file.
type pathSource interface {
	Path() string
}

// Watch reloads the reference whenever one of its file sources is written,
// created, renamed or removed. Events are debounced, and a failed reload is
// logged and keeps the previous snapshot. Watch blocks until ctx is done.
//
// Errors:
//   - Returns [*Error] if there are no file sources
//   - Returns [*Error] if the file watcher cannot be set up
func (r *Reference) Watch(ctx context.Context) error {
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, src := range r.sources {
		ps, ok := src.(pathSource)
		if !ok || ps.Path() == "" {
			continue
		}
		abs, err := filepath.Abs(ps.Path())
		if err != nil {
			return NewFieldError("watch", ps.Path(), "resolve", err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(files) == 0 {
		return NewError("watch", "watch", errors.New("no file sources to watch"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return NewError("watch", "create-watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched so that atomic renames over a file are seen.
	for dir := range dirs {
		if err = watcher.Add(dir); err != nil {
			return NewFieldError("watch", dir, "add", err)
		}
	}
	r.logger.Info("watching configuration files", "files", len(files))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !files[name] {
				continue
			}
			r.logger.Debug("configuration file changed", "file", name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := r.Load(ctx); err != nil {
				r.logger.Error("configuration reload failed", "error", err)
				continue
			}
			r.logger.Info("configuration reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", "error", err)
		}
	}
}
