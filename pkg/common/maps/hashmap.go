/*
 Licensed to the Apache Software Foundation (ASF) under one
 or more contributor license agreements.  See the NOTICE file
 distributed with this work for additional information
 regarding copyright ownership.  The ASF licenses this file
 to you under the Apache License, Version 2.0 (the
 "License"); you may not use this file except in compliance
 with the License.  You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package maps

import (
	"fmt"
)

// This is an implementation of Map interface which leverages separate chaining:
// an array of buckets, each holding a singly linked chain of entries whose key
// hashes to that bucket. The table starts with one bucket and doubles whenever
// a new key would push the load factor above one.
// It's not thread-safe, must be called while holding the lock.
type ChainedHashMap struct {
	// bucket heads, len(table) is the capacity
	table []*chainEntry
	// number of entries reachable from all buckets
	size int
	// bumped on every structural change, used to invalidate iterators
	version uint64
	destroyed bool
}

func NewChainedHashMap() *ChainedHashMap {
	return &ChainedHashMap{
		table: make([]*chainEntry, 1),
	}
}

func (chm *ChainedHashMap) Size() int {
	chm.checkUsable()
	return chm.size
}

func (chm *ChainedHashMap) Capacity() int {
	chm.checkUsable()
	return len(chm.table)
}

func (chm *ChainedHashMap) Contains(key string) bool {
	chm.checkUsable()
	return findEntry(chm.table[chm.bucketOf(key)], key) != nil
}

// Set adds the key or overwrites the value of an existing key in place.
// Only a new key can trigger a table growth.
func (chm *ChainedHashMap) Set(key string, value interface{}) {
	chm.checkUsable()
	if entry := findEntry(chm.table[chm.bucketOf(key)], key); entry != nil {
		entry.value = value
		return
	}
	chm.growIfNecessary()
	b := chm.bucketOf(key)
	chm.table[b] = &chainEntry{
		key:   key,
		value: value,
		next:  chm.table[b],
	}
	chm.size++
	chm.version++
}

// Get returns the value stored for the key.
// Panics if the key is absent: guard with Contains or use Lookup.
func (chm *ChainedHashMap) Get(key string) interface{} {
	value, ok := chm.Lookup(key)
	if !ok {
		panic(fmt.Errorf("get %q: %w", key, ErrKeyNotFound))
	}
	return value
}

// Lookup is the checked variant of Get.
func (chm *ChainedHashMap) Lookup(key string) (interface{}, bool) {
	chm.checkUsable()
	if entry := findEntry(chm.table[chm.bucketOf(key)], key); entry != nil {
		return entry.value, true
	}
	return nil, false
}

// Remove detaches the entry and returns its value, the caller owns the value again.
// Panics if the key is absent: guard with Contains or use Delete.
func (chm *ChainedHashMap) Remove(key string) interface{} {
	value, err := chm.Delete(key)
	if err != nil {
		panic(err)
	}
	return value
}

// Delete is the checked variant of Remove.
func (chm *ChainedHashMap) Delete(key string) (interface{}, error) {
	chm.checkUsable()
	found := unlinkEntry(&chm.table[chm.bucketOf(key)], key)
	if found == nil {
		return nil, fmt.Errorf("remove %q: %w", key, ErrKeyNotFound)
	}
	chm.size--
	chm.version++
	return found.value, nil
}

// First returns the head of the lowest non-empty bucket.
func (chm *ChainedHashMap) First() (string, bool) {
	chm.checkUsable()
	if entry := chm.firstFrom(0); entry != nil {
		return entry.key, true
	}
	return "", false
}

// Next returns the key that follows the given key: its chain successor or the
// head of the next non-empty bucket. The key must have been returned by First or
// Next while the map kept its current structure, passing any other key panics.
func (chm *ChainedHashMap) Next(key string) (string, bool) {
	chm.checkUsable()
	b := chm.bucketOf(key)
	curr := findEntry(chm.table[b], key)
	if curr == nil {
		panic(fmt.Errorf("next %q: %w", key, ErrKeyNotFound))
	}
	if curr.next != nil {
		return curr.next.key, true
	}
	if entry := chm.firstFrom(b + 1); entry != nil {
		return entry.key, true
	}
	return "", false
}

func (chm *ChainedHashMap) GetIterator() MapIterator {
	chm.checkUsable()
	return NewChainedHashMapIterator(chm)
}

// Keys returns all keys in iteration order.
func (chm *ChainedHashMap) Keys() []string {
	keys := make([]string, 0, chm.Size())
	for key, ok := chm.First(); ok; key, ok = chm.Next(key) {
		keys = append(keys, key)
	}
	return keys
}

// Destroy drops the table and every entry. Values are left untouched, releasing
// them is up to the caller.
func (chm *ChainedHashMap) Destroy() {
	chm.checkUsable()
	for i := range chm.table {
		chm.table[i] = nil
	}
	chm.table = nil
	chm.size = 0
	chm.version++
	chm.destroyed = true
}

func (chm *ChainedHashMap) checkUsable() {
	if chm == nil {
		panic("Nil ChainedHashMap")
	}
	if chm.destroyed {
		panic(ErrMapDestroyed)
	}
}

func (chm *ChainedHashMap) bucketOf(key string) int {
	return int(uint64(hashKey(key)) % uint64(len(chm.table)))
}

// firstFrom returns the head of the first non-empty bucket at or after index from.
func (chm *ChainedHashMap) firstFrom(from int) *chainEntry {
	b := chm.nonEmptyFrom(from)
	if b == len(chm.table) {
		return nil
	}
	return chm.table[b]
}

// nonEmptyFrom returns the first non-empty bucket index at or after from, or the capacity.
func (chm *ChainedHashMap) nonEmptyFrom(from int) int {
	for b := from; b < len(chm.table); b++ {
		if chm.table[b] != nil {
			return b
		}
	}
	return len(chm.table)
}

// growIfNecessary doubles the table when the next insert would exceed a load of one.
// Entries are relinked into the new table, not copied.
func (chm *ChainedHashMap) growIfNecessary() {
	if chm.size < len(chm.table) {
		return
	}
	old := chm.table
	chm.table = make([]*chainEntry, 2*len(old))
	for _, curr := range old {
		for curr != nil {
			next := curr.next
			b := chm.bucketOf(curr.key)
			curr.next = chm.table[b]
			chm.table[b] = curr
			curr = next
		}
	}
	chm.version++
}
