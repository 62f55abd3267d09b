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

package log

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerHandle names a logger for one area of the shell.
type LoggerHandle struct {
	id   int
	name string
}

// Defined loggers: the name is used as the zap logger name.
var (
	Maps        = &LoggerHandle{id: 0, name: "maps"}
	Shell       = &LoggerHandle{id: 1, name: "shell"}
	Config      = &LoggerHandle{id: 2, name: "config"}
	Metrics     = &LoggerHandle{id: 3, name: "metrics"}
	REST        = &LoggerHandle{id: 4, name: "rest"}
	Diagnostics = &LoggerHandle{id: 5, name: "diagnostics"}
)

var loggers = []*LoggerHandle{Maps, Shell, Config, Metrics, REST, Diagnostics}

var once sync.Once
var logger *zap.Logger
var config *zap.Config
var aLevel *zap.AtomicLevel

var (
	handleLock    sync.RWMutex
	handleLevels  = make(map[int]zapcore.Level)
	handleLoggers = make(map[int]*zap.Logger)
)

func (h *LoggerHandle) String() string {
	return h.name
}

// HandleByName returns the handle with the given name, nil if unknown.
func HandleByName(name string) *LoggerHandle {
	for _, h := range loggers {
		if h.name == name {
			return h
		}
	}
	return nil
}

func Logger() *zap.Logger {
	once.Do(func() {
		if logger = zap.L(); isNopLogger(logger) {
			// If a global logger is not found we are running as the shell binary
			// or in a test and need to create our own logger.
			config = createConfig()
			var err error
			logger, err = config.Build()
			// this should really not happen so just write to stdout and set a Nop logger
			if err != nil {
				fmt.Printf("Logging disabled, logger init failed with error: %v\n", err)
				logger = zap.NewNop()
			}
		}
	})
	return logger
}

// Log returns the named logger for the handle. A handle with its own level only
// passes entries at or above that level, on top of the global level.
func Log(handle *LoggerHandle) *zap.Logger {
	root := Logger()
	if handle == nil {
		return root
	}
	handleLock.RLock()
	named, ok := handleLoggers[handle.id]
	handleLock.RUnlock()
	if ok {
		return named
	}

	handleLock.Lock()
	defer handleLock.Unlock()
	if named, ok = handleLoggers[handle.id]; ok {
		return named
	}
	named = root.Named(handle.name)
	if level, ok := handleLevels[handle.id]; ok {
		named = named.WithOptions(zap.WrapCore(func(inner zapcore.Core) zapcore.Core {
			return filteredCore{level: level, inner: inner}
		}))
	}
	handleLoggers[handle.id] = named
	return named
}

// SetHandleLevel sets a minimum level for one handle.
func SetHandleLevel(handle *LoggerHandle, level zapcore.Level) {
	handleLock.Lock()
	defer handleLock.Unlock()
	handleLevels[handle.id] = level
	delete(handleLoggers, handle.id)
}

func IsDebugEnabled() bool {
	if logger == nil {
		// when under development mode
		return true
	}
	return logger.Core().Enabled(zapcore.DebugLevel)
}

// Returns true if the logger is a noop.
// Logger is a noop means the logger has not been initialized yet.
// This usually means a global logger is not set in the given context,
// see more at zap.ReplaceGlobals().
func isNopLogger(logger *zap.Logger) bool {
	return reflect.DeepEqual(zap.NewNop(), logger)
}

// InitAndSetLevel sets the global level of the logger we own.
// A logger provided through zap.ReplaceGlobals is left as is.
func InitAndSetLevel(level zapcore.Level) {
	if config == nil {
		Logger()
	}
	if config == nil {
		return
	}
	config.Level.SetLevel(level)
}

// SetLevelFromString parses a level name (debug, info, warn, ...) and applies it globally.
func SetLevelFromString(name string) error {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return err
	}
	InitAndSetLevel(level)
	return nil
}

func GetAtomicLevel() *zap.AtomicLevel {
	return aLevel
}

// Create a log config to keep full control over
// LogLevel set to INFO, Encodes for console, Writes to stderr,
// Print stack traces for messages at WarnLevel and above
func createConfig() *zap.Config {
	atomicLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	aLevel = &atomicLevel

	return &zap.Config{
		Level:       atomicLevel,
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:    "message",
			LevelKey:      "level",
			TimeKey:       "time",
			NameKey:       "name",
			CallerKey:     "caller",
			StacktraceKey: "stacktrace",
			LineEnding:    zapcore.DefaultLineEnding,
			// note: https://godoc.org/go.uber.org/zap/zapcore#EncoderConfig
			// only EncodeName is optional all others must be set
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
