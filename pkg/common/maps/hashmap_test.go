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
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

var _ Map = &ChainedHashMap{}

// checkPanic runs the function and asserts it panics with an error matching target
func checkPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		assert.Assert(t, r != nil, "expected panic wrapping %v", target)
		err, ok := r.(error)
		assert.Assert(t, ok, "panic value is not an error: %v", r)
		assert.Assert(t, errors.Is(err, target), "unexpected panic: %v", err)
	}()
	fn()
}

// checkInvariants verifies every entry sits in the bucket its hash selects,
// keys are unique and the size matches the reachable entries
func checkInvariants(t *testing.T, testMap *ChainedHashMap) {
	t.Helper()
	seen := make(map[string]bool)
	count := 0
	for b, head := range testMap.table {
		for curr := head; curr != nil; curr = curr.next {
			assert.Equal(t, testMap.bucketOf(curr.key), b, "key %s in wrong bucket", curr.key)
			assert.Assert(t, !seen[curr.key], "duplicate key %s", curr.key)
			seen[curr.key] = true
			count++
		}
	}
	assert.Equal(t, count, testMap.Size())
	assert.Assert(t, testMap.Capacity() >= 1)
}

func collectKeys(testMap *ChainedHashMap) []string {
	keys := make([]string, 0)
	for key, ok := testMap.First(); ok; key, ok = testMap.Next(key) {
		keys = append(keys, key)
	}
	return keys
}

func randomKeys(n int) []string {
	keys := make(map[string]bool, n)
	for len(keys) < n {
		keys[strconv.FormatInt(rand.Int63(), 36)] = true
	}
	result := make([]string, 0, n)
	for key := range keys {
		result = append(result, key)
	}
	return result
}

func TestNewChainedHashMap(t *testing.T) {
	testMap := NewChainedHashMap()
	assert.Equal(t, testMap.Size(), 0)
	assert.Equal(t, testMap.Capacity(), 1)
	assert.Equal(t, testMap.Contains(""), false)
	key, ok := testMap.First()
	assert.Equal(t, ok, false)
	assert.Equal(t, key, "")
	assert.Equal(t, testMap.GetIterator().HasNext(), false)
	checkInvariants(t, testMap)
}

func TestScenario(t *testing.T) {
	testMap := NewChainedHashMap()
	assert.Equal(t, testMap.Size(), 0)
	testMap.Set("apple", "pie")
	testMap.Set("orange", "juice")
	assert.Equal(t, testMap.Size(), 2)
	assert.Equal(t, testMap.Get("apple"), "pie")
	assert.Equal(t, testMap.Remove("orange"), "juice")
	assert.Equal(t, testMap.Size(), 1)
	assert.Equal(t, testMap.Contains("orange"), false)
	checkInvariants(t, testMap)
}

func TestSetOverwrite(t *testing.T) {
	testMap := NewChainedHashMap()
	testMap.Set("k", 1)
	capacity := testMap.Capacity()
	testMap.Set("k", 2)
	assert.Equal(t, testMap.Size(), 1)
	assert.Equal(t, testMap.Capacity(), capacity, "overwrite must not grow the table")
	assert.Equal(t, testMap.Get("k"), 2)

	// nil is a valid value handle
	testMap.Set("k", nil)
	value, ok := testMap.Lookup("k")
	assert.Assert(t, ok)
	assert.Assert(t, value == nil)
	checkInvariants(t, testMap)
}

func TestValueHandlesAreNotCopied(t *testing.T) {
	type payload struct{ n int }
	testMap := NewChainedHashMap()
	p := &payload{n: 1}
	testMap.Set("p", p)
	got, ok := testMap.Get("p").(*payload)
	assert.Assert(t, ok)
	assert.Assert(t, got == p, "value handle must be returned verbatim")
	removed, ok := testMap.Remove("p").(*payload)
	assert.Assert(t, ok)
	assert.Assert(t, removed == p)
}

func TestCaseSensitive(t *testing.T) {
	testMap := NewChainedHashMap()
	testMap.Set("Key", "a")
	testMap.Set("key", "b")
	assert.Equal(t, testMap.Size(), 2)
	assert.Assert(t, testMap.Contains("Key"))
	assert.Assert(t, testMap.Contains("key"))
	assert.Assert(t, !testMap.Contains("KEY"))
	assert.Equal(t, testMap.Get("Key"), "a")
	assert.Equal(t, testMap.Get("key"), "b")
}

func TestGrowth(t *testing.T) {
	testMap := NewChainedHashMap()
	expectedCapacity := []int{1, 2, 4, 4, 8, 8, 8, 8, 16}
	for i := 0; i < len(expectedCapacity); i++ {
		testMap.Set(strconv.Itoa(i), i)
		// capacity grows only when size reached it before the insert
		assert.Equal(t, testMap.Capacity(), expectedCapacity[i], "after %d inserts", i+1)
		checkInvariants(t, testMap)
	}
	for i := 0; i < 1000; i++ {
		testMap.Set(fmt.Sprintf("key-%d", i), i)
	}
	assert.Equal(t, testMap.Capacity(), 1024)
	checkInvariants(t, testMap)
	for i := 0; i < len(expectedCapacity); i++ {
		assert.Equal(t, testMap.Get(strconv.Itoa(i)), i)
	}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, testMap.Get(fmt.Sprintf("key-%d", i)), i)
	}

	// removal never shrinks
	for i := 0; i < 1000; i++ {
		testMap.Remove(fmt.Sprintf("key-%d", i))
	}
	assert.Equal(t, testMap.Capacity(), 1024)
	assert.Equal(t, testMap.Size(), len(expectedCapacity))
	checkInvariants(t, testMap)
}

func TestIterationVisitsEveryKey(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 9, 17, 1000} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			testMap := NewChainedHashMap()
			expected := randomKeys(n)
			for _, key := range expected {
				testMap.Set(key, key+"-value")
			}
			sort.Strings(expected)

			keys := collectKeys(testMap)
			assert.Equal(t, len(keys), n, "traversal length")
			sort.Strings(keys)
			assert.DeepEqual(t, keys, expected)

			iterKeys := make([]string, 0, n)
			it := testMap.GetIterator()
			for it.HasNext() {
				key, value := it.Next()
				assert.Equal(t, value, key+"-value")
				iterKeys = append(iterKeys, key)
			}
			sort.Strings(iterKeys)
			if diff := cmp.Diff(expected, iterKeys); diff != "" {
				t.Errorf("iterator keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIterationOrderMatchesCursor(t *testing.T) {
	testMap := NewChainedHashMap()
	for _, key := range randomKeys(50) {
		testMap.Set(key, nil)
	}
	cursorKeys := make([]string, 0)
	it := testMap.GetIterator()
	for it.HasNext() {
		key, _ := it.Next()
		cursorKeys = append(cursorKeys, key)
	}
	assert.DeepEqual(t, collectKeys(testMap), cursorKeys)
	assert.DeepEqual(t, testMap.Keys(), cursorKeys)
}

func TestIterationAfterRemoval(t *testing.T) {
	testMap := NewChainedHashMap()
	keys := randomKeys(33)
	for _, key := range keys {
		testMap.Set(key, key)
	}
	for _, key := range keys[:11] {
		testMap.Remove(key)
	}
	expected := append([]string{}, keys[11:]...)
	sort.Strings(expected)
	got := collectKeys(testMap)
	sort.Strings(got)
	assert.DeepEqual(t, got, expected)
	checkInvariants(t, testMap)
}

func TestSizeTracksDistinctKeys(t *testing.T) {
	testMap := NewChainedHashMap()
	reference := make(map[string]int)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		key := strconv.Itoa(r.Intn(300))
		if r.Intn(3) == 0 {
			if _, ok := reference[key]; ok {
				assert.Equal(t, testMap.Remove(key), reference[key])
				delete(reference, key)
			} else {
				assert.Assert(t, !testMap.Contains(key))
			}
			continue
		}
		testMap.Set(key, i)
		reference[key] = i
		assert.Equal(t, testMap.Get(key), i)
		assert.Equal(t, testMap.Size(), len(reference))
	}
	checkInvariants(t, testMap)
	for key, value := range reference {
		assert.Equal(t, testMap.Get(key), value)
	}
}

func TestMissingKeyPanics(t *testing.T) {
	testMap := NewChainedHashMap()
	testMap.Set("present", 1)
	checkPanic(t, ErrKeyNotFound, func() { testMap.Get("absent") })
	checkPanic(t, ErrKeyNotFound, func() { testMap.Remove("absent") })
	checkPanic(t, ErrKeyNotFound, func() { testMap.Next("absent") })
	checkPanic(t, ErrKeyNotFound, func() { testMap.Get("Present") })
	// the failed calls leave the map intact
	assert.Equal(t, testMap.Size(), 1)
	checkInvariants(t, testMap)
}

func TestCheckedAccessors(t *testing.T) {
	testMap := NewChainedHashMap()
	value, ok := testMap.Lookup("a")
	assert.Assert(t, !ok)
	assert.Assert(t, value == nil)
	_, err := testMap.Delete("a")
	assert.Assert(t, errors.Is(err, ErrKeyNotFound))
	assert.ErrorContains(t, err, `remove "a"`)

	testMap.Set("a", "x")
	value, err = testMap.Delete("a")
	assert.NilError(t, err)
	assert.Equal(t, value, "x")
	assert.Equal(t, testMap.Size(), 0)
}

func TestIteratorInvalidatedByMutation(t *testing.T) {
	testMap := NewChainedHashMap()
	testMap.Set("a", 1)
	testMap.Set("b", 2)

	it := testMap.GetIterator()
	assert.Assert(t, it.HasNext())
	// overwriting a value keeps the structure
	testMap.Set("a", 3)
	assert.Assert(t, it.HasNext())

	testMap.Set("c", 4)
	checkPanic(t, ErrConcurrentModification, func() { it.HasNext() })

	it = testMap.GetIterator()
	testMap.Remove("a")
	checkPanic(t, ErrConcurrentModification, func() { it.Next() })
}

func TestDestroy(t *testing.T) {
	testMap := NewChainedHashMap()
	value := &struct{ n int }{n: 1}
	testMap.Set("a", value)
	it := testMap.GetIterator()
	testMap.Destroy()
	// the value handle is untouched
	assert.Equal(t, value.n, 1)
	checkPanic(t, ErrMapDestroyed, func() { testMap.Size() })
	checkPanic(t, ErrMapDestroyed, func() { testMap.Contains("a") })
	checkPanic(t, ErrMapDestroyed, func() { testMap.Set("b", 1) })
	checkPanic(t, ErrMapDestroyed, func() { it.HasNext() })
	checkPanic(t, ErrMapDestroyed, func() { testMap.Destroy() })
}

func TestIndependentInstances(t *testing.T) {
	first := NewChainedHashMap()
	second := NewChainedHashMap()
	first.Set("shared", 1)
	second.Set("shared", 2)
	assert.Equal(t, first.Get("shared"), 1)
	assert.Equal(t, second.Get("shared"), 2)
	first.Destroy()
	assert.Equal(t, second.Get("shared"), 2)
}

func TestHashKey(t *testing.T) {
	seed := ^uint32(0)
	assert.Equal(t, hashKey(""), seed)
	assert.Equal(t, hashKey("a"), seed*31^uint32('a'))
	assert.Equal(t, hashKey("apple"), hashKey("apple"))
	assert.Assert(t, hashKey("Key") != hashKey("key"))
}

func TestNilIterator(t *testing.T) {
	it := NewChainedHashMapIterator(nil)
	assert.Equal(t, it.HasNext(), false)
	key, value := it.Next()
	assert.Equal(t, key, "")
	assert.Assert(t, value == nil)
}
