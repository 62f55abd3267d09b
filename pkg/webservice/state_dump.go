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

package webservice

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/mapshell/mapshell/pkg/common/configs"
	shellLog "github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/webservice/dao"
)

const (
	stateLogCallDepth = 2
)

var stateDump sync.Mutex // ensures only one state dump can be handled at a time

type AggregatedStateInfo struct {
	Timestamp int64               `json:"timestamp,omitempty"`
	Session   *dao.SessionDAOInfo `json:"session,omitempty"`
	Map       *dao.MapDAOInfo     `json:"map,omitempty"`
	Config    *dao.ConfigDAOInfo  `json:"config,omitempty"`
	LogLevel  string              `json:"logLevel,omitempty"`
}

func getFullStateDump(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	if err := doStateDump(w); err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func doStateDump(w io.Writer) error {
	stateDump.Lock()
	defer stateDump.Unlock()

	var aggregated = AggregatedStateInfo{
		Timestamp: time.Now().UnixNano(),
		Config:    &dao.ConfigDAOInfo{ShellConfig: configs.ConfigContext.Get()},
	}
	if level := shellLog.GetAtomicLevel(); level != nil {
		aggregated.LogLevel = level.Level().String()
	}
	if session := getSession(); session != nil {
		aggregated.Session = getSessionJSON(session)
		aggregated.Map = getMapJSON(session)
	}

	var prettyJSON []byte
	var err error
	prettyJSON, err = json.MarshalIndent(aggregated, "", "  ")
	if err != nil {
		return err
	}

	stateLog := log.New(w, "", 0)
	if err = stateLog.Output(stateLogCallDepth, string(prettyJSON)); err != nil {
		return err
	}

	return nil
}
