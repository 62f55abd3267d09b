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
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/log"
)

const noTransition = "no transition"

// ----------------------------------
// session events
// ----------------------------------
type sessionEvent int

const (
	InitSession sessionEvent = iota
	StopSession
)

func (se sessionEvent) String() string {
	return [...]string{"initSession", "stopSession"}[se]
}

// ----------------------------------
// session states
// ----------------------------------
type sessionState int

const (
	New sessionState = iota
	Ready
	Stopped
)

func (ss sessionState) String() string {
	return [...]string{"New", "Ready", "Stopped"}[ss]
}

// NewSessionState returns the lifecycle of a shell session: a session holds no
// map while New, holds one while Ready and accepts nothing once Stopped.
func NewSessionState() *fsm.FSM {
	return fsm.NewFSM(
		New.String(), fsm.Events{
			{
				Name: InitSession.String(),
				Src:  []string{New.String(), Ready.String()},
				Dst:  Ready.String(),
			}, {
				Name: StopSession.String(),
				Src:  []string{New.String(), Ready.String()},
				Dst:  Stopped.String(),
			},
		},
		fsm.Callbacks{
			// The first argument must always be the session ID.
			"enter_state": func(_ context.Context, event *fsm.Event) {
				sessionID, ok := event.Args[0].(string)
				if !ok {
					sessionID = "unknown"
				}
				log.Log(log.Shell).Debug("Session state transition",
					zap.String("sessionID", sessionID),
					zap.String("source", event.Src),
					zap.String("destination", event.Dst),
					zap.String("event", event.Event))
			},
		},
	)
}
