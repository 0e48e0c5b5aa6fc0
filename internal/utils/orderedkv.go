package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap is a map that remembers insertion order. It marshals as a
// JSON object whose keys appear in that order.
type OrderedKVMap[T any] map[string]OrderedKV[T]

// SetIfAbsent stores v under key unless the key is already present.
// It reports whether v was stored.
func (om OrderedKVMap[T]) SetIfAbsent(key string, v T) bool {
	if _, ok := om[key]; ok {
		return false
	}
	om[key] = OrderedKV[T]{Value: v, Order: int64(len(om))}
	return true
}

func (om OrderedKVMap[T]) sorted() []string {
	keys := make([]string, 0, len(om))
	for k := range om {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return om[keys[i]].Order < om[keys[j]].Order
	})
	return keys
}

// Values returns the stored values in insertion order.
func (om OrderedKVMap[T]) Values() []T {
	keys := om.sorted()
	values := make([]T, len(keys))
	for i, k := range keys {
		values[i] = om[k].Value
	}
	return values
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range om.sorted() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(om[k].Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
