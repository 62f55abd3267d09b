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

package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/common/configs"
	"github.com/mapshell/mapshell/pkg/entrypoint"
	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/shell"
)

func main() {
	configFile := flag.String("config", "", "shell configuration file, defaults are used when not set")
	quiet := flag.Bool("quiet", common.GetBoolEnvVar("MAPSHELL_QUIET", false), "do not print the banner")
	flag.Parse()

	os.Exit(run(*configFile, *quiet))
}

func run(configFile string, quiet bool) int {
	conf, err := configs.LoadShellConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 2
	}
	configs.ConfigContext.Set(conf)
	if err = entrypoint.ConfigureLogging(conf); err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		return 2
	}

	serviceContext := entrypoint.StartAllServices()
	defer serviceContext.StopAll()

	sh := shell.NewShell(conf, serviceContext.Session, os.Stdin, os.Stdout)
	sh.Quiet = quiet
	if err = sh.Run(); err != nil {
		log.Log(log.Shell).Error("shell stopped with error", zap.Error(err))
		return 1
	}
	return 0
}
