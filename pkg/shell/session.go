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
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/common/maps"
	"github.com/mapshell/mapshell/pkg/locking"
	"github.com/mapshell/mapshell/pkg/log"
)

// Session holds the map manipulated by the shell. The map itself is not safe for
// concurrent use, the session lock guards it so read-only observers such as the
// REST service can look at it while the shell runs.
type Session struct {
	SessionID string

	hashMap      *maps.ChainedHashMap
	mapID        string
	stateMachine *fsm.FSM

	locking.RWMutex
}

func NewSession() *Session {
	return &Session{
		SessionID:    common.GetNewUUID(),
		stateMachine: NewSessionState(),
	}
}

// Init replaces the current map, if any, by a new empty one.
// The previous map is destroyed, its values are plain strings and need no release.
func (s *Session) Init() error {
	s.Lock()
	defer s.Unlock()
	if err := s.handleEvent(InitSession); err != nil {
		return err
	}
	if s.hashMap != nil {
		s.hashMap.Destroy()
	}
	s.hashMap = maps.NewChainedHashMap()
	s.mapID = common.GetNewUUID()
	log.Log(log.Shell).Info("new map initialized",
		zap.String("sessionID", s.SessionID),
		zap.String("mapID", s.mapID))
	return nil
}

// Stop destroys the map and moves the session to its final state.
func (s *Session) Stop() error {
	s.Lock()
	defer s.Unlock()
	if err := s.handleEvent(StopSession); err != nil {
		return err
	}
	if s.hashMap != nil {
		s.hashMap.Destroy()
		s.hashMap = nil
	}
	return nil
}

func (s *Session) CurrentState() string {
	s.RLock()
	defer s.RUnlock()
	return s.stateMachine.Current()
}

func (s *Session) MapID() string {
	s.RLock()
	defer s.RUnlock()
	return s.mapID
}

// Update runs fn against the map while holding the write lock.
func (s *Session) Update(fn func(m *maps.ChainedHashMap)) error {
	s.Lock()
	defer s.Unlock()
	if s.hashMap == nil {
		return common.ErrMapNotInitialized
	}
	fn(s.hashMap)
	return nil
}

// View runs fn against the map while holding the read lock, fn must not modify the map.
func (s *Session) View(fn func(m *maps.ChainedHashMap)) error {
	s.RLock()
	defer s.RUnlock()
	if s.hashMap == nil {
		return common.ErrMapNotInitialized
	}
	fn(s.hashMap)
	return nil
}

// handleEvent moves the state machine, a repeated init is not a failure.
func (s *Session) handleEvent(event sessionEvent) error {
	err := s.stateMachine.Event(context.Background(), event.String(), s.SessionID)
	if err != nil && err.Error() == noTransition {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session %s: %w", s.SessionID, err)
	}
	return nil
}
