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

// ChainedHashMapIterator is a cursor over a ChainedHashMap that tracks the
// current bucket and chain entry. It is bound to the structure the map had when
// the iterator was created: any insert, removal or growth afterwards makes it
// unusable and the next call panics.
type ChainedHashMapIterator struct {
	hashMap *ChainedHashMap
	version uint64
	bucket  int
	entry   *chainEntry
}

func NewChainedHashMapIterator(hashMap *ChainedHashMap) *ChainedHashMapIterator {
	if hashMap == nil {
		return &ChainedHashMapIterator{}
	}
	it := &ChainedHashMapIterator{
		hashMap: hashMap,
		version: hashMap.version,
	}
	it.seek(0)
	return it
}

func (it *ChainedHashMapIterator) HasNext() bool {
	if it.hashMap == nil {
		return false
	}
	it.checkVersion()
	return it.entry != nil
}

func (it *ChainedHashMapIterator) Next() (key string, value interface{}) {
	if it.hashMap == nil {
		return "", nil
	}
	it.checkVersion()
	if it.entry == nil {
		return "", nil
	}
	key, value = it.entry.key, it.entry.value
	if it.entry.next != nil {
		it.entry = it.entry.next
	} else {
		it.seek(it.bucket + 1)
	}
	return key, value
}

func (it *ChainedHashMapIterator) seek(from int) {
	it.bucket = it.hashMap.nonEmptyFrom(from)
	if it.bucket < len(it.hashMap.table) {
		it.entry = it.hashMap.table[it.bucket]
	} else {
		it.entry = nil
	}
}

func (it *ChainedHashMapIterator) checkVersion() {
	it.hashMap.checkUsable()
	if it.version != it.hashMap.version {
		panic(ErrConcurrentModification)
	}
}
