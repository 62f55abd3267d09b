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

package locking

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	godeadlock "github.com/sasha-s/go-deadlock"

	"github.com/mapshell/mapshell/pkg/log"
)

const (
	EnvDeadlockDetectionEnabled = "MAPSHELL_DEADLOCK_DETECTION"
	EnvDeadlockTimeoutSeconds   = "MAPSHELL_DEADLOCK_TIMEOUT_SECONDS"
	EnvExitOnDeadlock           = "MAPSHELL_DEADLOCK_EXIT"

	defaultTimeoutSeconds = 60
)

var (
	once             sync.Once
	trackingEnabled  atomic.Bool
	timeoutSeconds   atomic.Int32
	deadlockDetected atomic.Bool
	testingMode      atomic.Bool
	exitOnDeadlock   atomic.Bool
)

// errorBuf collects the go-deadlock report so it can go through our logger.
type errorBuf struct {
	data string
	sync.Mutex
}

func (b *errorBuf) Write(p []byte) (n int, err error) {
	if b == nil {
		return len(p), nil
	}
	b.Lock()
	defer b.Unlock()
	b.data += string(p)
	return len(p), nil
}

func init() {
	once.Do(reInit)
}

func envBool(name string) bool {
	value, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && value
}

func reInit() {
	enabled := envBool(EnvDeadlockDetectionEnabled)
	trackingEnabled.Store(enabled)

	timeoutSec, err := strconv.ParseInt(os.Getenv(EnvDeadlockTimeoutSeconds), 10, 32)
	if err != nil || timeoutSec <= 0 {
		timeoutSec = defaultTimeoutSeconds
	}
	timeoutSeconds.Store(int32(timeoutSec))

	exitOnDetect := envBool(EnvExitOnDeadlock)
	exitOnDeadlock.Store(exitOnDetect)

	godeadlock.Opts.Disable = !enabled
	godeadlock.Opts.DeadlockTimeout = time.Duration(timeoutSec) * time.Second
	godeadlock.Opts.LogBuf = &errorBuf{}
	godeadlock.Opts.OnPotentialDeadlock = onPotentialDeadlock

	if enabled {
		// written before logging is set up, errors cannot be handled
		_, _ = fmt.Fprintf(os.Stderr, "=== Deadlock detection enabled (timeout: %d seconds, exit on deadlock: %t) ===\n", timeoutSec, exitOnDetect)
	}
}

func onPotentialDeadlock() {
	deadlockDetected.Store(true)
	printBufContents()
	if exitOnDeadlock.Load() && !testingMode.Load() {
		os.Exit(1)
	}
}

func printBufContents() {
	buf, ok := godeadlock.Opts.LogBuf.(*errorBuf)
	if !ok {
		log.Log(log.Diagnostics).Error("POTENTIAL DEADLOCK: No details available")
		return
	}
	buf.Lock()
	defer buf.Unlock()
	log.Log(log.Diagnostics).Error(buf.data)
	buf.data = ""
}

func IsTrackingEnabled() bool {
	return trackingEnabled.Load()
}

func GetDeadlockTimeoutSeconds() int {
	return int(timeoutSeconds.Load())
}

func IsDeadlockDetected() bool {
	return deadlockDetected.Load()
}

// Mutex is a sync.Mutex that reports potential deadlocks when tracking is enabled.
type Mutex struct {
	godeadlock.Mutex
}

// RWMutex is a sync.RWMutex that reports potential deadlocks when tracking is enabled.
type RWMutex struct {
	godeadlock.RWMutex
}
