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

package shell

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/common/maps"
	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/metrics"
)

// handler runs a command with validated arguments. It returns the result label
// used for metrics and whether the shell should stop.
type handler func(sh *Shell, args []string) (string, bool)

type command struct {
	// canonical name first, aliases after
	names []string
	// number of arguments the command takes
	arity int
	help  string
	run   handler
}

var (
	commands []*command
	// commandIndex maps every name and alias to its command
	commandIndex map[string]*command
)

// the table is built in init as help lists the table itself
func init() {
	commands = []*command{
		{names: []string{"help"}, help: "help               List available commands", run: runHelp},
		{names: []string{"exit", "quit", "q"}, help: "exit/quit/q        Exit map shell", run: runExit},
		{names: []string{"init"}, help: "init               Initialize new empty map", run: runInit},
		{names: []string{"size"}, help: "size               Get current map size", run: runSize},
		{names: []string{"ls", "print", "dump"}, help: "ls/print/dump      Get all map contents", run: runList},
		{names: []string{"contains"}, arity: 1, help: "contains <key>     Check if map contains <key>", run: runContains},
		{names: []string{"set"}, arity: 2, help: "set <key> <value>  Set <value> for <key>", run: runSet},
		{names: []string{"get"}, arity: 1, help: "get <key>          Get the value for <key>", run: runGet},
		{names: []string{"remove"}, arity: 1, help: "remove <key>       Remove the value for <key>", run: runRemove},
	}
	commandIndex = make(map[string]*command)
	for _, cmd := range commands {
		for _, name := range cmd.names {
			commandIndex[name] = cmd
		}
	}
}

func (c *command) name() string {
	return c.names[0]
}

// usage renders the expected format using the name the user typed
func (c *command) usage(typed string) string {
	return typed + strings.Repeat(" %[^ ]", c.arity)
}

func runHelp(sh *Shell, _ []string) (string, bool) {
	for _, cmd := range commands {
		sh.printf("    %s\n", cmd.help)
	}
	return metrics.ResultOK, false
}

func runExit(sh *Shell, _ []string) (string, bool) {
	if err := sh.session.Stop(); err != nil {
		log.Log(log.Shell).Warn("failed to stop session", zap.Error(err))
	}
	return metrics.ResultOK, true
}

func runInit(sh *Shell, _ []string) (string, bool) {
	if err := sh.session.Init(); err != nil {
		log.Log(log.Shell).Error("failed to initialize map", zap.Error(err))
		return metrics.ResultUnknown, false
	}
	sh.recordMapState()
	sh.printf("    m = {}\n")
	return metrics.ResultOK, false
}

func runSize(sh *Shell, _ []string) (string, bool) {
	return sh.view(func(m *maps.ChainedHashMap) string {
		sh.printf("    |m| = %d\n", m.Size())
		return metrics.ResultOK
	}), false
}

func runList(sh *Shell, _ []string) (string, bool) {
	return sh.view(func(m *maps.ChainedHashMap) string {
		entries := make([]string, 0, m.Size())
		for key, ok := m.First(); ok; key, ok = m.Next(key) {
			entries = append(entries, key+":"+formatValue(m.Get(key)))
		}
		sh.printf("    m = {%s}\n", strings.Join(entries, ", "))
		return metrics.ResultOK
	}), false
}

func runContains(sh *Shell, args []string) (string, bool) {
	return sh.view(func(m *maps.ChainedHashMap) string {
		sh.printf("    %t\n", m.Contains(args[0]))
		return metrics.ResultOK
	}), false
}

func runSet(sh *Shell, args []string) (string, bool) {
	key, value := args[0], args[1]
	return sh.update(func(m *maps.ChainedHashMap) string {
		capacity := m.Capacity()
		m.Set(key, value)
		if m.Capacity() > capacity {
			sh.metrics.IncMapGrowth()
			log.Log(log.Maps).Debug("map table grew",
				zap.Int("from", capacity),
				zap.Int("to", m.Capacity()),
				zap.Int("size", m.Size()))
		}
		sh.printf("    m[%s] = %s\n", key, value)
		return metrics.ResultOK
	}), false
}

func runGet(sh *Shell, args []string) (string, bool) {
	key := args[0]
	return sh.view(func(m *maps.ChainedHashMap) string {
		// Get fails hard on a missing key
		if !m.Contains(key) {
			sh.printf("    error; key not found\n")
			return metrics.ResultNotFound
		}
		sh.printf("    m[%s] = %s\n", key, formatValue(m.Get(key)))
		return metrics.ResultOK
	}), false
}

func runRemove(sh *Shell, args []string) (string, bool) {
	key := args[0]
	return sh.update(func(m *maps.ChainedHashMap) string {
		// Remove fails hard on a missing key
		if !m.Contains(key) {
			sh.printf("    error; key not found\n")
			return metrics.ResultNotFound
		}
		value := m.Remove(key)
		sh.printf("    # m[%s] = %s\n", key, formatValue(value))
		return metrics.ResultOK
	}), false
}

// view runs fn under the session read lock, reporting a missing map to the user
func (sh *Shell) view(fn func(m *maps.ChainedHashMap) string) string {
	var result string
	err := sh.session.View(func(m *maps.ChainedHashMap) {
		result = fn(m)
	})
	return sh.mapResult(result, err)
}

// update runs fn under the session write lock and records the new map state
func (sh *Shell) update(fn func(m *maps.ChainedHashMap) string) string {
	var result string
	err := sh.session.Update(func(m *maps.ChainedHashMap) {
		result = fn(m)
		sh.metrics.SetMapState(m.Size(), m.Capacity())
	})
	return sh.mapResult(result, err)
}

func (sh *Shell) mapResult(result string, err error) string {
	if errors.Is(err, common.ErrMapNotInitialized) {
		sh.printf("    error; use `init` first to initialize a new empty map\n")
		return metrics.ResultUninitialized
	}
	return result
}

func (sh *Shell) recordMapState() {
	_ = sh.session.View(func(m *maps.ChainedHashMap) {
		sh.metrics.SetMapState(m.Size(), m.Capacity())
	})
}
