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

package configs

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mapshell/mapshell/pkg/log"
)

const (
	DefaultPrompt            = "> "
	DefaultMaxLineLength     = 80
	DefaultLogLevel          = "info"
	DefaultWebServiceAddress = "127.0.0.1:9080"
)

// The shell configuration:
// - the prompt printed before each command
// - the maximum number of characters accepted on one command line
// - the global log level and optional per logger levels
// - the optional read-only REST service
type ShellConfig struct {
	Prompt        string            `yaml:",omitempty" json:",omitempty"`
	MaxLineLength int               `yaml:",omitempty" json:",omitempty"`
	LogLevel      string            `yaml:",omitempty" json:",omitempty"`
	LogLevels     map[string]string `yaml:",omitempty" json:",omitempty"`
	WebService    WebServiceConfig  `yaml:",omitempty" json:",omitempty"`
	Checksum      string            `yaml:",omitempty" json:",omitempty"`
}

// The REST service exposing the shell map and the metrics.
type WebServiceConfig struct {
	Enabled bool   `yaml:",omitempty" json:",omitempty"`
	Address string `yaml:",omitempty" json:",omitempty"`
}

// UnmarshalYAML presets the defaults so missing fields keep them after decoding.
func (sc *ShellConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	sc.Prompt = DefaultPrompt
	sc.MaxLineLength = DefaultMaxLineLength
	sc.LogLevel = DefaultLogLevel
	sc.WebService.Address = DefaultWebServiceAddress

	type plain ShellConfig
	return unmarshal((*plain)(sc))
}

// NewDefaultShellConfig returns the configuration used when no file is provided.
func NewDefaultShellConfig() *ShellConfig {
	conf, err := LoadShellConfigFromByteArray([]byte(DefaultShellConfig))
	if err != nil {
		// the built-in default must always validate
		panic(err)
	}
	return conf
}

// LoadShellConfig reads and validates the config file, an empty path returns the defaults.
func LoadShellConfig(path string) (*ShellConfig, error) {
	if path == "" {
		return NewDefaultShellConfig(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Log(log.Config).Error("failed to read shell configuration",
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}
	return LoadShellConfigFromByteArray(content)
}

func LoadShellConfigFromByteArray(content []byte) (*ShellConfig, error) {
	conf, err := ParseAndValidateConfig(content)
	if err != nil {
		return nil, err
	}
	// Create a sha256 checksum for this validated config
	SetChecksum(content, conf)
	return conf, nil
}

func SetChecksum(content []byte, conf *ShellConfig) {
	noChecksumContent := GetConfigurationString(content)
	conf.Checksum = fmt.Sprintf("%X", sha256.Sum256([]byte(noChecksumContent)))
}

func ParseAndValidateConfig(content []byte) (*ShellConfig, error) {
	conf := &ShellConfig{}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true) // Enable strict unmarshaling behavior
	err := decoder.Decode(conf)
	if errors.Is(err, io.EOF) {
		// empty content has nothing to decode, use the defaults
		err = conf.UnmarshalYAML(func(interface{}) error { return nil })
	}
	if err != nil {
		log.Log(log.Config).Error("failed to parse shell configuration",
			zap.Error(err))
		return nil, err
	}
	// validate the config
	err = Validate(conf)
	if err != nil {
		log.Log(log.Config).Error("shell configuration validation failed",
			zap.Error(err))
		return nil, err
	}
	return conf, nil
}

func GetConfigurationString(requestBytes []byte) string {
	conf := string(requestBytes)
	checksum := "checksum: "
	checksumLength := 64 + len(checksum)
	if strings.Contains(conf, checksum) {
		checksum += strings.Split(conf, checksum)[1]
		checksum = strings.TrimRight(checksum, "\n")
		if len(checksum) > checksumLength {
			checksum = checksum[:checksumLength]
		}
	}
	conf = strings.ReplaceAll(conf, checksum+"\n", "")
	return strings.ReplaceAll(conf, checksum, "")
}

// DefaultShellConfig contains the default shell configuration; used if no other is provided
var DefaultShellConfig = `
prompt: "> "
maxlinelength: 80
loglevel: info
webservice:
  enabled: false
  address: 127.0.0.1:9080
`
