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
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/mapshell/mapshell/pkg/common"
)

// LineReader reads command lines of a bounded length.
type LineReader struct {
	reader  *bufio.Reader
	maxLine int
}

func NewLineReader(in io.Reader, maxLine int) *LineReader {
	return &LineReader{
		reader:  bufio.NewReader(in),
		maxLine: maxLine,
	}
}

// ReadLine returns the next line without its terminator. A NUL byte ends a line
// like a newline does. A line longer than the maximum is consumed completely and
// ErrLineTooLong is returned. A last line without a terminator is returned as is,
// io.EOF is only returned when nothing was read.
func (lr *LineReader) ReadLine() (string, error) {
	var line strings.Builder
	for {
		ch, err := lr.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && line.Len() > 0 {
				return line.String(), nil
			}
			return "", err
		}
		if ch == '\n' || ch == 0 {
			return strings.TrimSuffix(line.String(), "\r"), nil
		}
		if line.Len() == lr.maxLine {
			if ch == '\r' {
				if next, peekErr := lr.reader.Peek(1); peekErr == nil && next[0] == '\n' {
					continue
				}
			}
			lr.discardLine()
			return "", common.ErrLineTooLong
		}
		line.WriteByte(ch)
	}
}

// discardLine consumes input up to and including the next line terminator.
func (lr *LineReader) discardLine() {
	for {
		ch, err := lr.reader.ReadByte()
		if err != nil || ch == '\n' || ch == 0 {
			return
		}
	}
}

// tokenize splits a line on spaces, runs of spaces never produce empty tokens.
func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' '
	})
}
