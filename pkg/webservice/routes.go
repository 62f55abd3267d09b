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
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type routes []route

var webRoutes = routes{
	route{
		"Map",
		"GET",
		"/ws/v1/map",
		getMapInfo,
	},
	route{
		"Map",
		"GET",
		"/ws/v1/map/keys/:key",
		getMapEntry,
	},
	route{
		"Session",
		"GET",
		"/ws/v1/session",
		getSessionInfo,
	},
	route{
		"Config",
		"GET",
		"/ws/v1/config",
		getShellConfig,
	},
	route{
		"Config",
		"POST",
		"/ws/v1/validate-conf",
		validateConf,
	},
	route{
		"Shell",
		"GET",
		"/ws/v1/fullstatedump",
		getFullStateDump,
	},
	route{
		"Shell",
		"GET",
		"/ws/v1/stack",
		getStackInfo,
	},
	route{
		"Metrics",
		"GET",
		"/ws/v1/metrics",
		promhttp.Handler().ServeHTTP,
	},
}
