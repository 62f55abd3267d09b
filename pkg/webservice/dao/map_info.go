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

package dao

type MapEntryDAOInfo struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MapDAOInfo struct {
	Initialized bool              `json:"initialized"` // no omitempty, false tells the shell has not run init yet
	MapID       string            `json:"mapID,omitempty"`
	Size        int               `json:"size"`
	Capacity    int               `json:"capacity"`
	Entries     []MapEntryDAOInfo `json:"entries"`
}

type SessionDAOInfo struct {
	SessionID string `json:"sessionID"`
	State     string `json:"state"`
}
