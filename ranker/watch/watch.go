// Package watch keeps a Ranker's Configuration in sync with a YAML file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/netrank/netrank/ranker"
)

// ConfigSink receives each successfully parsed configuration.
// *ranker.Ranker satisfies it.
type ConfigSink interface {
	SetConfiguration(conf ranker.Configuration)
}

// Options configures a ConfigWatcher.
type Options struct {
	// Debounce is how long to wait after the last change before re-reading.
	// Editors often write a file in several steps. Default: 100ms
	Debounce time.Duration

	// OnReload, if set, is called after every configuration the sink accepted.
	OnReload func(conf ranker.Configuration)
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{Debounce: 100 * time.Millisecond}
}

// ConfigWatcher re-reads a configuration file whenever it changes and pushes
// the result to a ConfigSink. A file that fails to parse is logged and
// ignored; the previous configuration stays in force.
//
// The parent directory is watched rather than the file itself so that
// atomic replace-by-rename, as done by most editors, is still seen.
type ConfigWatcher struct {
	path string
	sink ConfigSink
	opts Options
}

// New creates a watcher for the configuration file at path.
func New(path string, sink ConfigSink, opts Options) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	return &ConfigWatcher{path: filepath.Clean(abs), sink: sink, opts: opts}, nil
}

// Load reads the file once and applies it to the sink.
func (w *ConfigWatcher) Load() error {
	conf, err := ranker.LoadConfiguration(w.path)
	if err != nil {
		return err
	}
	w.apply(conf)
	return nil
}

// Run watches the file until ctx is cancelled. It does not apply the current
// contents first; call Load for that.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("config watcher: %v", err)
		case <-timer.C:
			if err := w.Load(); err != nil {
				logrus.Warnf("config watcher: keeping previous configuration: %v", err)
			}
		}
	}
}

func (w *ConfigWatcher) apply(conf ranker.Configuration) {
	w.sink.SetConfiguration(conf)
	logrus.Infof("ranker configuration loaded from %s (actively_prefer_bad_wifi=%v)", w.path, conf.ActivelyPreferBadWiFi)
	if w.opts.OnReload != nil {
		w.opts.OnReload(conf)
	}
}
