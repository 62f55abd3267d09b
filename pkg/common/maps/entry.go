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

// chainEntry is one link of a bucket chain. The key is owned by the map,
// the value is an opaque handle owned by the caller.
type chainEntry struct {
	key   string
	value interface{}
	next  *chainEntry
}

// findEntry walks the chain starting at head and returns the entry with the key or nil.
func findEntry(head *chainEntry, key string) *chainEntry {
	for curr := head; curr != nil; curr = curr.next {
		if curr.key == key {
			return curr
		}
	}
	return nil
}

// unlinkEntry bridges the chain referenced by link across the entry with the key.
// Returns the detached entry, nil if the chain does not hold the key.
func unlinkEntry(link **chainEntry, key string) *chainEntry {
	for ; *link != nil; link = &(*link).next {
		if (*link).key == key {
			found := *link
			*link = found.next
			found.next = nil
			return found
		}
	}
	return nil
}

// hashKey is a multiplicative rolling hash over the raw key bytes.
// It is case-sensitive and stable for identical byte sequences.
func hashKey(key string) uint32 {
	hash := ^uint32(0)
	// iterate bytes, not runes
	for i := 0; i < len(key); i++ {
		hash *= 31
		hash ^= uint32(key[i])
	}
	return hash
}
