// Package data holds the static config tables (objs, npcs, locs,
// inventories, hunt rules) read once at startup from YAML.
package data

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// record is implemented by every config type through its pointer.
type record[T any] interface {
	*T
	ConfigID() int
	DebugName() string
	setDefaults()
}

// Table indexes configs by numeric id and by debug name. Tables are never
// mutated after construction; a reload builds new ones.
type Table[T any] struct {
	byID  map[int]*T
	names map[string]int
	ids   []int
}

func NewTable[T any, P record[T]](items []T) *Table[T] {
	t := &Table[T]{
		byID:  make(map[int]*T, len(items)),
		names: make(map[string]int),
	}
	for i := range items {
		p := P(&items[i])
		id := p.ConfigID()
		if _, dup := t.byID[id]; !dup {
			t.ids = append(t.ids, id)
		}
		t.byID[id] = &items[i]
		if name := p.DebugName(); name != "" {
			t.names[name] = id
		}
	}
	sort.Ints(t.ids)
	return t
}

// Get returns the config with the id, or nil.
func (t *Table[T]) Get(id int) *T {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

func (t *Table[T]) ByName(name string) *T {
	if t == nil {
		return nil
	}
	id, ok := t.names[name]
	if !ok {
		return nil
	}
	return t.byID[id]
}

// ID returns the id registered under name, or -1.
func (t *Table[T]) ID(name string) int {
	if t == nil {
		return -1
	}
	if id, ok := t.names[name]; ok {
		return id
	}
	return -1
}

func (t *Table[T]) Count() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

// All yields configs in ascending id order.
func (t *Table[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		if t == nil {
			return
		}
		for _, id := range t.ids {
			if !yield(id, t.byID[id]) {
				return
			}
		}
	}
}

// LoadTable reads a YAML file holding a list under key. Each entry starts
// from the type's defaults, so files only list what differs. A missing file
// yields an empty table and an error wrapping os.ErrNotExist.
func LoadTable[T any, P record[T]](path, key string) (*Table[T], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return NewTable[T, P](nil), fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string][]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	nodes, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("parse %s: missing %q list", path, key)
	}
	items := make([]T, len(nodes))
	for i := range nodes {
		P(&items[i]).setDefaults()
		if err := nodes[i].Decode(&items[i]); err != nil {
			return nil, fmt.Errorf("parse %s: entry %d: %w", path, i, err)
		}
	}
	return NewTable[T, P](items), nil
}

// IsMissing reports whether a load error only means the file is absent.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
