// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package collections

// listNode is a node of the doubly linked list backing Hashmap's iteration
// order.
type listNode[T any] struct {
	value T
	next  *listNode[T]
	prev  *listNode[T]
}

type list[T any] struct {
	head, tail *listNode[T]
	length     int
}

func (l *list[T]) pushBack(value T) *listNode[T] {
	node := &listNode[T]{value: value}
	if l.tail == nil {
		l.head = node
		l.tail = node
	} else {
		node.prev = l.tail
		l.tail.next = node
		l.tail = node
	}
	l.length++
	return node
}

func (l *list[T]) remove(node *listNode[T]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.next = nil
	node.prev = nil
	l.length--
}

type hashmapEntry[K comparable, V any] struct {
	key   K
	value V
	node  *listNode[*hashmapEntry[K, V]]
}

// Hashmap is a map that preserves key insertion order when iterated, the way
// an onion-layer dependency chain or a scheduler's outstanding-CAT table
// needs to be walked oldest-first.
type Hashmap[K comparable, V any] struct {
	m    map[K]*hashmapEntry[K, V]
	list list[*hashmapEntry[K, V]]
}

// NewHashmap returns an empty, order-preserving map.
func NewHashmap[K comparable, V any]() *Hashmap[K, V] {
	return &Hashmap[K, V]{m: make(map[K]*hashmapEntry[K, V])}
}

// Put inserts or updates key. Updating an existing key does not move it in
// iteration order.
func (h *Hashmap[K, V]) Put(key K, value V) {
	if entry, ok := h.m[key]; ok {
		entry.value = value
		return
	}
	entry := &hashmapEntry[K, V]{key: key, value: value}
	entry.node = h.list.pushBack(entry)
	h.m[key] = entry
}

// Get returns the value stored for key, if any.
func (h *Hashmap[K, V]) Get(key K) (V, bool) {
	if entry, ok := h.m[key]; ok {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Delete removes key, if present.
func (h *Hashmap[K, V]) Delete(key K) {
	if entry, ok := h.m[key]; ok {
		h.list.remove(entry.node)
		delete(h.m, key)
	}
}

// Len returns the number of entries.
func (h *Hashmap[K, V]) Len() int {
	return h.list.length
}

// Iterate calls f for each entry in insertion order, stopping early if f
// returns false.
func (h *Hashmap[K, V]) Iterate(f func(K, V) bool) {
	for node := h.list.head; node != nil; node = node.next {
		if !f(node.value.key, node.value.value) {
			return
		}
	}
}

// OldestKey returns the least-recently-inserted key still present.
func (h *Hashmap[K, V]) OldestKey() (K, bool) {
	if h.list.head == nil {
		var zero K
		return zero, false
	}
	return h.list.head.value.key, true
}
