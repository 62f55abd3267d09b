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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/mapshell/mapshell/pkg/log"
)

// Command results used as the result label
const (
	ResultOK            = "ok"
	ResultUsage         = "usage"
	ResultUninitialized = "uninitialized"
	ResultNotFound      = "notfound"
	ResultUnknown       = "unknown"
)

// ShellMetrics to declare shell and map metrics
type ShellMetrics struct {
	command        *prometheus.CounterVec
	commandLatency prometheus.Histogram
	mapSize        prometheus.Gauge
	mapCapacity    prometheus.Gauge
	mapGrowth      prometheus.Counter
}

// InitShellMetrics to initialize shell metrics
func InitShellMetrics() *ShellMetrics {
	s := &ShellMetrics{}

	s.command = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ShellSubsystem,
			Name:      "command_total",
			Help:      "Total number of shell commands by command and result. Result includes `ok`, `usage`, `uninitialized`, `notfound` and `unknown`.",
		}, []string{"command", "result"})

	s.commandLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: ShellSubsystem,
			Name:      "command_latency_seconds",
			Help:      "Latency of running one shell command, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 10, 7), // start from 1us
		},
	)

	s.mapSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: MapSubsystem,
			Name:      "entries",
			Help:      "Number of entries in the shell map.",
		})

	s.mapCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: MapSubsystem,
			Name:      "buckets",
			Help:      "Number of buckets allocated by the shell map.",
		})

	s.mapGrowth = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: MapSubsystem,
			Name:      "growth_total",
			Help:      "Total number of times the shell map doubled its table.",
		})

	// Register the metrics
	var metricsList = []prometheus.Collector{
		s.command,
		s.commandLatency,
		s.mapSize,
		s.mapCapacity,
		s.mapGrowth,
	}
	for _, metric := range metricsList {
		if err := prometheus.Register(metric); err != nil {
			log.Log(log.Metrics).Warn("failed to register metrics collector", zap.Error(err))
		}
	}
	return s
}

func (s *ShellMetrics) Reset() {
	s.command.Reset()
	s.mapSize.Set(0)
	s.mapCapacity.Set(0)
}

func (s *ShellMetrics) IncCommand(command, result string) {
	s.command.With(prometheus.Labels{"command": command, "result": result}).Inc()
}

func (s *ShellMetrics) ObserveCommandLatency(start time.Time) {
	s.commandLatency.Observe(SinceInSeconds(start))
}

// SetMapState records the size and bucket count of the shell map.
func (s *ShellMetrics) SetMapState(size, capacity int) {
	s.mapSize.Set(float64(size))
	s.mapCapacity.Set(float64(capacity))
}

func (s *ShellMetrics) IncMapGrowth() {
	s.mapGrowth.Inc()
}

func (s *ShellMetrics) getCommandCount(command, result string) (int, error) {
	metricDto := &dto.Metric{}
	err := s.command.With(prometheus.Labels{"command": command, "result": result}).Write(metricDto)
	if err == nil {
		return int(*metricDto.Counter.Value), nil
	}
	return -1, err
}

func (s *ShellMetrics) getMapSize() (int, error) {
	metricDto := &dto.Metric{}
	err := s.mapSize.Write(metricDto)
	if err == nil {
		return int(*metricDto.Gauge.Value), nil
	}
	return -1, err
}

func (s *ShellMetrics) getMapCapacity() (int, error) {
	metricDto := &dto.Metric{}
	err := s.mapCapacity.Write(metricDto)
	if err == nil {
		return int(*metricDto.Gauge.Value), nil
	}
	return -1, err
}

func (s *ShellMetrics) getMapGrowth() (int, error) {
	metricDto := &dto.Metric{}
	err := s.mapGrowth.Write(metricDto)
	if err == nil {
		return int(*metricDto.Counter.Value), nil
	}
	return -1, err
}
