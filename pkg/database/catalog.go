package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Catalog manages a collection of named inventory tables
type Catalog struct {
	tables map[string]Table
	mu     sync.RWMutex
}

// NewCatalog creates a new empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		tables: make(map[string]Table),
	}
}

// RegisterTable adds a table to the catalog, replacing any table with the same name
func (c *Catalog) RegisterTable(name string, t Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = t
}

// GetTable retrieves a table by name
func (c *Catalog) GetTable(name string) (Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table '%s': %w", name, ErrTableNotFound)
	}
	return t, nil
}

// Names returns the registered table names in sorted order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir registers every inventory file found directly under dir, keyed by
// file name. A missing directory registers nothing.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !IsInventoryFile(e.Name()) {
			continue
		}
		c.RegisterTable(e.Name(), NewSheetTable(filepath.Join(dir, e.Name())))
		n++
	}
	return n, nil
}

// IsInventoryFile reports whether name has an extension the parser reads
func IsInventoryFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv", ".tsv":
		return true
	}
	return false
}
