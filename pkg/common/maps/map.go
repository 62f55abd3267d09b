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

// This interface defines how to storing and managing data in forms of mapping.
// Keys are case-sensitive strings, values are opaque handles owned by the caller:
// the map never inspects, copies or releases them.
type Map interface {
	// return the number of entries
	Size() int
	// return the number of buckets currently allocated
	Capacity() int
	// return true if an entry with exactly this key exists
	Contains(key string) bool
	// add or update a mapping, an update never changes the size
	Set(key string, value interface{})
	// return the value for the key, panics if the key is absent
	Get(key string) interface{}
	// remove the mapping and hand its value back to the caller, panics if the key is absent
	Remove(key string) interface{}
	// return the first key in iteration order, false if the map is empty
	First() (string, bool)
	// return the key following a key previously returned by First or Next
	Next(key string) (string, bool)
	// return iterator for all entries
	GetIterator() MapIterator
	// release the table, the map must not be used afterwards
	Destroy()
}

// This interface helps to iterate over all entries in mapping
type MapIterator interface {
	// return true if there are more entries to iterate over
	HasNext() (ok bool)
	// return the key and value from the iterator
	Next() (key string, value interface{})
}
