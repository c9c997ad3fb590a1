package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Collection is an id -> record document that keeps insertion order across JSON round-trips.
// The zero value is an empty collection ready for use.
type Collection[T any] struct {
	keys  []string
	items map[string]T
}

// NewCollection returns an empty collection.
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Len returns number of records.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Get returns record by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	var zero T
	if c == nil || c.items == nil {
		return zero, false
	}
	v, ok := c.items[id]
	return v, ok
}

// Set stores record. New ids are appended, existing ids keep their position.
func (c *Collection[T]) Set(id string, v T) {
	if c.items == nil {
		c.items = make(map[string]T)
	}
	if _, ok := c.items[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.items[id] = v
}

// Keys returns ids in insertion order.
func (c *Collection[T]) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Range calls fn for every record in insertion order until fn returns false.
func (c *Collection[T]) Range(fn func(id string, v T) bool) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		if !fn(k, c.items[k]) {
			return
		}
	}
}

// Filter returns a new collection with the records keep accepts.
func (c *Collection[T]) Filter(keep func(id string, v T) bool) *Collection[T] {
	out := NewCollection[T]()
	c.Range(func(id string, v T) bool {
		if keep(id, v) {
			out.Set(id, v)
		}
		return true
	})
	return out
}

// NextID returns max numeric id + 1, or "1" when no numeric id exists.
// Non-numeric ids are ignored.
func (c *Collection[T]) NextID() string {
	maxID := 0
	c.Range(func(id string, _ T) bool {
		if n, err := strconv.Atoi(id); err == nil && n > maxID {
			maxID = n
		}
		return true
	})
	return strconv.Itoa(maxID + 1)
}

// MarshalJSON encodes the collection as a JSON object in insertion order.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.items[k])
		if err != nil {
			return nil, fmt.Errorf("collection: encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order. null decodes to an empty collection.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	c.keys = nil
	c.items = make(map[string]T)

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("collection: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("collection: unexpected key %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("collection: decode %q: %w", key, err)
		}
		c.Set(key, v)
	}
	_, err = dec.Token()
	return err
}
