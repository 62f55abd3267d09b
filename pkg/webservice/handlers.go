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
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mapshell/mapshell/pkg/common/configs"
	"github.com/mapshell/mapshell/pkg/common/maps"
	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/shell"
	"github.com/mapshell/mapshell/pkg/webservice/dao"
)

const (
	MapNotInitialized = "Map not initialized"
	KeyNotFound       = "Key not found"
	SessionMissing    = "No shell session"
)

func getStackInfo(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	var stack = func() []byte {
		buf := make([]byte, 1024)
		for {
			n := runtime.Stack(buf, true)
			if n < len(buf) {
				return buf[:n]
			}
			buf = make([]byte, 2*len(buf))
		}
	}
	if _, err := w.Write(stack()); err != nil {
		log.Log(log.REST).Error("GetStackInfo error", zap.Error(err))
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func getMapInfo(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	session := getSession()
	if session == nil {
		buildJSONErrorResponse(w, SessionMissing, http.StatusServiceUnavailable)
		return
	}
	if err := json.NewEncoder(w).Encode(getMapJSON(session)); err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func getMapEntry(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	session := getSession()
	if session == nil {
		buildJSONErrorResponse(w, SessionMissing, http.StatusServiceUnavailable)
		return
	}
	key := httprouter.ParamsFromContext(r.Context()).ByName("key")
	var entry *dao.MapEntryDAOInfo
	err := session.View(func(m *maps.ChainedHashMap) {
		if value, ok := m.Lookup(key); ok {
			entry = &dao.MapEntryDAOInfo{Key: key, Value: fmt.Sprint(value)}
		}
	})
	if err != nil {
		buildJSONErrorResponse(w, MapNotInitialized, http.StatusNotFound)
		return
	}
	if entry == nil {
		buildJSONErrorResponse(w, KeyNotFound, http.StatusNotFound)
		return
	}
	if err = json.NewEncoder(w).Encode(entry); err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func getSessionInfo(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	session := getSession()
	if session == nil {
		buildJSONErrorResponse(w, SessionMissing, http.StatusServiceUnavailable)
		return
	}
	if err := json.NewEncoder(w).Encode(getSessionJSON(session)); err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func getShellConfig(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)

	conf := &dao.ConfigDAOInfo{ShellConfig: configs.ConfigContext.Get()}
	var marshalledConf []byte
	var err error
	// check if we have a request for json output
	if r.Header.Get("Accept") == "application/json" {
		marshalledConf, err = json.Marshal(conf)
	} else {
		w.Header().Set("Content-Type", "application/x-yaml; charset=UTF-8")
		marshalledConf, err = yaml.Marshal(conf)
	}
	if err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err = w.Write(marshalledConf); err != nil {
		log.Log(log.REST).Error("failed to write config", zap.Error(err))
	}
}

func validateConf(w http.ResponseWriter, r *http.Request) {
	writeHeaders(w)
	requestBytes, err := io.ReadAll(r.Body)
	if err == nil {
		_, err = configs.LoadShellConfigFromByteArray(requestBytes)
	}
	var result dao.ValidateConfResponse
	if err != nil {
		result.Allowed = false
		result.Reason = err.Error()
	} else {
		result.Allowed = true
	}
	if err = json.NewEncoder(w).Encode(result); err != nil {
		buildJSONErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,HEAD,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "X-Requested-With,Content-Type,Accept,Origin")
}

func buildJSONErrorResponse(w http.ResponseWriter, detail string, code int) {
	w.WriteHeader(code)
	errorInfo := dao.NewYAPIError(nil, code, detail)
	if jsonErr := json.NewEncoder(w).Encode(errorInfo); jsonErr != nil {
		log.Log(log.REST).Error("Could not encode error response", zap.Error(jsonErr))
	}
}

// getMapJSON snapshots the map in iteration order under the session read lock.
func getMapJSON(session *shell.Session) *dao.MapDAOInfo {
	info := &dao.MapDAOInfo{
		Entries: make([]dao.MapEntryDAOInfo, 0),
	}
	err := session.View(func(m *maps.ChainedHashMap) {
		info.Initialized = true
		info.Size = m.Size()
		info.Capacity = m.Capacity()
		it := m.GetIterator()
		for it.HasNext() {
			key, value := it.Next()
			info.Entries = append(info.Entries, dao.MapEntryDAOInfo{Key: key, Value: fmt.Sprint(value)})
		}
	})
	if err == nil {
		info.MapID = session.MapID()
	}
	return info
}

func getSessionJSON(session *shell.Session) *dao.SessionDAOInfo {
	return &dao.SessionDAOInfo{
		SessionID: session.SessionID,
		State:     session.CurrentState(),
	}
}
