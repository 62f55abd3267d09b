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
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/common/configs"
	"github.com/mapshell/mapshell/pkg/common/maps"
	"github.com/mapshell/mapshell/pkg/shell"
	"github.com/mapshell/mapshell/pkg/webservice/dao"
)

func serve(t *testing.T, method, url, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	assert.NilError(t, err, "request creation failed")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	newRouter().ServeHTTP(resp, req)
	return resp
}

func newTestSession(t *testing.T, entries map[string]string) *shell.Session {
	t.Helper()
	session := shell.NewSession()
	if entries != nil {
		assert.NilError(t, session.Init())
		assert.NilError(t, session.Update(func(m *maps.ChainedHashMap) {
			for k, v := range entries {
				m.Set(k, v)
			}
		}))
	}
	NewWebApp(session)
	return session
}

func assertAPIError(t *testing.T, resp *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	assert.Equal(t, resp.Code, code)
	var errInfo dao.YAPIError
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &errInfo), "unmarshal of error response failed")
	assert.Equal(t, errInfo.StatusCode, code)
	assert.Equal(t, errInfo.Message, message)
}

func TestGetMapInfoUninitialized(t *testing.T) {
	newTestSession(t, nil)
	resp := serve(t, "GET", "/ws/v1/map", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	assert.Equal(t, resp.Header().Get("Content-Type"), "application/json; charset=UTF-8")

	var info dao.MapDAOInfo
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Assert(t, !info.Initialized)
	assert.Equal(t, info.MapID, "")
	assert.Equal(t, len(info.Entries), 0)
	// an empty list, not null
	assert.Assert(t, strings.Contains(resp.Body.String(), `"entries":[]`))
}

func TestGetMapInfo(t *testing.T) {
	session := newTestSession(t, map[string]string{"apple": "pie", "orange": "juice", "kiwi": "tart"})
	resp := serve(t, "GET", "/ws/v1/map", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)

	var info dao.MapDAOInfo
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Assert(t, info.Initialized)
	assert.Equal(t, info.MapID, session.MapID())
	assert.Equal(t, info.Size, 3)
	assert.Equal(t, info.Capacity, 4)

	var expected []dao.MapEntryDAOInfo
	assert.NilError(t, session.View(func(m *maps.ChainedHashMap) {
		for key, ok := m.First(); ok; key, ok = m.Next(key) {
			expected = append(expected, dao.MapEntryDAOInfo{Key: key, Value: m.Get(key).(string)})
		}
	}))
	if diff := cmp.Diff(expected, info.Entries); diff != "" {
		t.Errorf("entries not in iteration order (-want +got):\n%s", diff)
	}
}

func TestGetMapEntry(t *testing.T) {
	newTestSession(t, map[string]string{"apple": "pie"})
	resp := serve(t, "GET", "/ws/v1/map/keys/apple", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	var entry dao.MapEntryDAOInfo
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &entry))
	assert.Equal(t, entry.Key, "apple")
	assert.Equal(t, entry.Value, "pie")

	resp = serve(t, "GET", "/ws/v1/map/keys/Apple", "", nil)
	assertAPIError(t, resp, http.StatusNotFound, KeyNotFound)
}

func TestGetMapEntryUninitialized(t *testing.T) {
	newTestSession(t, nil)
	resp := serve(t, "GET", "/ws/v1/map/keys/apple", "", nil)
	assertAPIError(t, resp, http.StatusNotFound, MapNotInitialized)
}

func TestNoSession(t *testing.T) {
	NewWebApp(nil)
	for _, url := range []string{"/ws/v1/map", "/ws/v1/map/keys/a", "/ws/v1/session"} {
		resp := serve(t, "GET", url, "", nil)
		assertAPIError(t, resp, http.StatusServiceUnavailable, SessionMissing)
	}
}

func TestGetSessionInfo(t *testing.T) {
	session := newTestSession(t, map[string]string{})
	resp := serve(t, "GET", "/ws/v1/session", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	var info dao.SessionDAOInfo
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &info))
	assert.Equal(t, info.SessionID, session.SessionID)
	assert.Equal(t, info.State, shell.Ready.String())
}

func TestGetShellConfig(t *testing.T) {
	configs.ConfigContext.Set(configs.NewDefaultShellConfig())

	resp := serve(t, "GET", "/ws/v1/config", "", map[string]string{"Accept": "application/json"})
	assert.Equal(t, resp.Code, http.StatusOK)
	var conf configs.ShellConfig
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &conf))
	assert.Equal(t, conf.Prompt, configs.DefaultPrompt)
	assert.Equal(t, conf.MaxLineLength, configs.DefaultMaxLineLength)

	resp = serve(t, "GET", "/ws/v1/config", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	assert.Equal(t, resp.Header().Get("Content-Type"), "application/x-yaml; charset=UTF-8")
	assert.Assert(t, strings.Contains(resp.Body.String(), "maxlinelength: 80"), "unexpected yaml: %s", resp.Body.String())
}

func TestValidateConf(t *testing.T) {
	tests := []struct {
		name    string
		content string
		allowed bool
	}{
		{"empty", "", true},
		{"valid", "prompt: \"map> \"\nmaxlinelength: 120\n", true},
		{"unknown field", "colour: blue\n", false},
		{"line length", "maxlinelength: 0\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(t, "POST", "/ws/v1/validate-conf", tt.content, nil)
			assert.Equal(t, resp.Code, http.StatusOK)
			var result dao.ValidateConfResponse
			assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &result))
			assert.Equal(t, result.Allowed, tt.allowed, "reason: %s", result.Reason)
			assert.Equal(t, result.Reason == "", tt.allowed)
		})
	}
}

func TestFullStateDump(t *testing.T) {
	session := newTestSession(t, map[string]string{"a": "1"})
	resp := serve(t, "GET", "/ws/v1/fullstatedump", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)

	var state AggregatedStateInfo
	assert.NilError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Assert(t, state.Timestamp > 0)
	assert.Equal(t, state.Session.SessionID, session.SessionID)
	assert.Equal(t, state.Map.Size, 1)
	assert.Equal(t, state.Map.Entries[0].Key, "a")
	assert.Assert(t, state.Config != nil)
}

func TestMetricsRoute(t *testing.T) {
	resp := serve(t, "GET", "/ws/v1/metrics", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(resp.Body.String(), "mapshell_map_buckets"))
}

func TestStackRoute(t *testing.T) {
	resp := serve(t, "GET", "/ws/v1/stack", "", nil)
	assert.Equal(t, resp.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(resp.Body.String(), "goroutine"))
}

func TestStartStopWebApp(t *testing.T) {
	newTestSession(t, map[string]string{"apple": "pie"})
	m := NewWebApp(getSession())
	address := "127.0.0.1:19080"
	m.StartWebApp(address)
	defer func() {
		assert.NilError(t, m.StopWebApp(), "Error when closing webapp service.")
	}()

	err := common.WaitFor(100*time.Millisecond, 5*time.Second, func() bool {
		conn, connErr := net.DialTimeout("tcp", address, time.Second)
		if connErr == nil {
			conn.Close()
		}
		return connErr == nil
	})
	assert.NilError(t, err, "web app failed to start")

	resp, err := http.Get("http://" + address + "/ws/v1/map/keys/apple")
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	var entry dao.MapEntryDAOInfo
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&entry))
	assert.Equal(t, entry.Value, "pie")
}

func TestStopWebAppNotStarted(t *testing.T) {
	m := NewWebApp(nil)
	assert.NilError(t, m.StopWebApp())
}
