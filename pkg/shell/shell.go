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
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/common"
	"github.com/mapshell/mapshell/pkg/common/configs"
	"github.com/mapshell/mapshell/pkg/log"
	"github.com/mapshell/mapshell/pkg/metrics"
)

const banner = "Map CLI; use `help` if you are totally lost.\n"

// Shell reads commands line by line and runs them against the session map.
type Shell struct {
	// Quiet suppresses the banner
	Quiet bool

	prompt  string
	maxLine int
	reader  *LineReader
	out     io.Writer
	session *Session
	metrics *metrics.ShellMetrics
	warnLog *log.RateLimitedLogger
}

func NewShell(conf *configs.ShellConfig, session *Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		prompt:  conf.Prompt,
		maxLine: conf.MaxLineLength,
		reader:  NewLineReader(in, conf.MaxLineLength),
		out:     out,
		session: session,
		metrics: metrics.GetShellMetrics(),
		warnLog: log.RateLimitedLog(log.Shell, 10*time.Second),
	}
}

// Run processes input until an exit command or the end of the input.
func (sh *Shell) Run() error {
	log.Log(log.Shell).Info("shell started",
		zap.String("sessionID", sh.session.SessionID),
		zap.Int("maxLineLength", sh.maxLine))
	if !sh.Quiet {
		sh.printf(banner)
	}
	for {
		sh.printf("%s", sh.prompt)
		line, err := sh.reader.ReadLine()
		if errors.Is(err, common.ErrLineTooLong) {
			sh.printf("    error; line too long (> %d)\n", sh.maxLine)
			sh.warnLog.Warn("rejected command line", zap.Int("maxLineLength", sh.maxLine))
			continue
		}
		if errors.Is(err, io.EOF) {
			log.Log(log.Shell).Info("input closed, leaving shell")
			return sh.session.Stop()
		}
		if err != nil {
			return err
		}
		if sh.Execute(line) {
			log.Log(log.Shell).Info("exit requested, leaving shell")
			return nil
		}
	}
}

// Execute runs one command line and reports whether the shell should stop.
func (sh *Shell) Execute(line string) bool {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return false
	}
	start := time.Now()
	defer sh.metrics.ObserveCommandLatency(start)

	typed := tokens[0]
	cmd, ok := commandIndex[typed]
	if !ok {
		sh.printf("    error; unknown command (%s)\n", typed)
		sh.metrics.IncCommand("unknown", metrics.ResultUnknown)
		sh.warnLog.Warn("unknown command", zap.String("command", typed))
		return false
	}
	if len(tokens)-1 != cmd.arity {
		sh.printf("    error; use format `%s`\n", cmd.usage(typed))
		sh.metrics.IncCommand(cmd.name(), metrics.ResultUsage)
		return false
	}
	result, stop := cmd.run(sh, tokens[1:])
	sh.metrics.IncCommand(cmd.name(), result)
	return stop
}

func (sh *Shell) printf(format string, args ...interface{}) {
	// nothing sensible to do when the terminal is gone
	_, _ = fmt.Fprintf(sh.out, format, args...)
}

// formatValue renders a value handle, the shell only stores strings
func formatValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
