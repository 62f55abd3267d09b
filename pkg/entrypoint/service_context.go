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
	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/shell"
	"github.com/mapshell/mapshell/pkg/webservice"
)

type ServiceContext struct {
	Session *shell.Session
	WebApp  *webservice.WebService
}

func (s *ServiceContext) StopAll() {
	log.Log(log.Shell).Info("ServiceContext stop all services")
	if s.WebApp != nil {
		if err := s.WebApp.StopWebApp(); err != nil {
			log.Log(log.Shell).Error("failed to stop web-app",
				zap.Error(err))
		}
	}
	// the shell normally stopped the session on exit
	if s.Session != nil && s.Session.CurrentState() != shell.Stopped.String() {
		if err := s.Session.Stop(); err != nil {
			log.Log(log.Shell).Error("failed to stop session",
				zap.Error(err))
		}
	}
}
