package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rsadesk/internal/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultBrokers is the supported-broker list offered by the panel when no
// brokers file is configured. The first three entries are group selectors.
var DefaultBrokers = []string{
	"All", "Most", "Day1",
	"Fennel", "Chase", "Fidelity", "FirstTrade", "Public", "Robinhood",
	"Schwab", "TastyTrade", "Tornado", "Tradier", "Vanguard", "Webull",
}

// CatalogFile is the on-disk layout of bot.brokers_path.
type CatalogFile struct {
	Brokers []string `yaml:"brokers"`
}

// CatalogSnapshot is an immutable view of the broker list.
type CatalogSnapshot struct {
	Version  int64
	LoadedAt time.Time
	Brokers  []string
}

// Catalog serves the supported-broker list and reloads it when the backing
// file changes. Close stops the watcher.
type Catalog struct {
	path string

	mu       sync.RWMutex
	snapshot CatalogSnapshot

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewCatalog loads path, or the default list when path is empty, and starts
// watching the file for edits.
func NewCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: strings.TrimSpace(path)}
	if c.path == "" {
		c.store(DefaultBrokers)
		return c, nil
	}
	abs, err := filepath.Abs(c.path)
	if err != nil {
		return nil, fmt.Errorf("resolve broker catalog path failed: %w", err)
	}
	c.path = abs
	if err := c.reload(); err != nil {
		return nil, err
	}
	// The directory is watched so that editors replacing the file by rename
	// are still noticed.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch broker catalog failed: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch broker catalog failed: %w", err)
	}
	c.watcher = watcher
	c.done = make(chan struct{})
	go c.watch()
	return c, nil
}

// NewStaticCatalog builds a catalog that never reloads.
func NewStaticCatalog(brokers []string) *Catalog {
	c := &Catalog{}
	c.store(brokers)
	return c
}

// Close stops watching the brokers file. It is safe to call more than once
// and on catalogs that never watched anything.
func (c *Catalog) Close() error {
	if c == nil || c.watcher == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		err = c.watcher.Close()
		<-c.done
	})
	return err
}

func (c *Catalog) watch() {
	defer close(c.done)
	for {
		select {
		case evt, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != c.path || (!evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create)) {
				continue
			}
			if err := c.reload(); err != nil {
				logger.Errorf("broker catalog reload failed (%s): %v", evt.Name, err)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("broker catalog watcher: %v", err)
		}
	}
}

// Brokers returns a copy of the current broker list.
func (c *Catalog) Brokers() []string {
	return c.Snapshot().Brokers
}

func (c *Catalog) Snapshot() CatalogSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.snapshot
	snap.Brokers = append([]string(nil), c.snapshot.Brokers...)
	return snap
}

func (c *Catalog) reload() error {
	file, err := readCatalogFile(c.path)
	if err != nil {
		return err
	}
	if len(file.Brokers) == 0 {
		return fmt.Errorf("broker catalog %s lists no brokers", c.path)
	}
	c.store(file.Brokers)
	logger.Infof("broker catalog loaded %d entries from %s", len(file.Brokers), filepath.Base(c.path))
	return nil
}

func (c *Catalog) store(brokers []string) {
	normalized := normalizeBrokers(brokers)
	c.mu.Lock()
	c.snapshot = CatalogSnapshot{
		Version:  c.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Brokers:  normalized,
	}
	c.mu.Unlock()
}

func readCatalogFile(path string) (CatalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogFile{}, fmt.Errorf("read broker catalog failed: %w", err)
	}
	var file CatalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return CatalogFile{}, fmt.Errorf("parse broker catalog failed: %w", err)
	}
	return file, nil
}

// normalizeBrokers trims names and drops blanks and exact repeats while
// keeping file order.
func normalizeBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
