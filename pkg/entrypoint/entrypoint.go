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

package entrypoint

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mapshell/mapshell/pkg/common/configs"
	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/shell"
	"github.com/mapshell/mapshell/pkg/webservice"
)

// options used to control how services are started
type startupOptions struct {
	startWebAppFlag bool
	webAppAddress   string
}

// StartAllServices creates the shell session and starts the services the
// current configuration asks for.
func StartAllServices() *ServiceContext {
	log.Log(log.Shell).Info("ServiceContext start all services")
	conf := configs.ConfigContext.Get()
	return startAllServicesWithParameters(
		startupOptions{
			startWebAppFlag: conf.WebService.Enabled,
			webAppAddress:   conf.WebService.Address,
		})
}

// VisibleForTesting
func StartAllServicesWithParams(withWebapp bool, address string) *ServiceContext {
	log.Log(log.Shell).Info("ServiceContext start all services")
	return startAllServicesWithParameters(
		startupOptions{
			startWebAppFlag: withWebapp,
			webAppAddress:   address,
		})
}

func startAllServicesWithParameters(opts startupOptions) *ServiceContext {
	session := shell.NewSession()
	context := &ServiceContext{
		Session: session,
	}

	if opts.startWebAppFlag {
		log.Log(log.Shell).Info("ServiceContext start web application service",
			zap.String("sessionID", session.SessionID))
		webapp := webservice.NewWebApp(session)
		webapp.StartWebApp(opts.webAppAddress)
		context.WebApp = webapp
	}

	return context
}

// ConfigureLogging applies the global and per logger levels of the configuration.
func ConfigureLogging(conf *configs.ShellConfig) error {
	if err := log.SetLevelFromString(conf.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", conf.LogLevel, err)
	}
	for name, levelName := range conf.LogLevels {
		handle := log.HandleByName(name)
		if handle == nil {
			return fmt.Errorf("unknown logger %q", name)
		}
		level, err := zapcore.ParseLevel(levelName)
		if err != nil {
			return fmt.Errorf("log level %q for logger %s: %w", levelName, name, err)
		}
		log.SetHandleLevel(handle, level)
	}
	return nil
}
