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

package configs

import (
	"fmt"
	"net"

	"go.uber.org/zap/zapcore"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/log"
)

const maxLineLengthLimit = 4096

// Check the line length: the reader needs at least one character per line
func checkLineLength(length int) error {
	if length < 1 || length > maxLineLengthLimit {
		return fmt.Errorf("%w: maxlinelength must be between 1 and %d, got %d",
			common.ErrInvalidConfig, maxLineLengthLimit, length)
	}
	return nil
}

func checkLogLevels(conf *ShellConfig) error {
	if _, err := zapcore.ParseLevel(conf.LogLevel); err != nil {
		return fmt.Errorf("%w: loglevel: %v", common.ErrInvalidConfig, err)
	}
	for name, level := range conf.LogLevels {
		if log.HandleByName(name) == nil {
			return fmt.Errorf("%w: loglevels: unknown logger '%s'", common.ErrInvalidConfig, name)
		}
		if _, err := zapcore.ParseLevel(level); err != nil {
			return fmt.Errorf("%w: loglevels.%s: %v", common.ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// The address is only checked when the service will be started
func checkWebService(ws WebServiceConfig) error {
	if !ws.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(ws.Address); err != nil {
		return fmt.Errorf("%w: webservice.address: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// Check the shell configuration
func Validate(conf *ShellConfig) error {
	if conf == nil {
		return fmt.Errorf("%w: empty config", common.ErrInvalidConfig)
	}
	if conf.Prompt == "" {
		return fmt.Errorf("%w: prompt cannot be empty", common.ErrInvalidConfig)
	}
	if err := checkLineLength(conf.MaxLineLength); err != nil {
		return err
	}
	if err := checkLogLevels(conf); err != nil {
		return err
	}
	return checkWebService(conf.WebService)
}
