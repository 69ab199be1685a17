// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package bridge holds what every host bridge shares: the failure policy,
// the fault taxonomy, the per-instance guard and result discriminant parsing.
package bridge

import (
	"log/slog"
	"time"
)

// Policy decides what happens when a host callback misbehaves.
type Policy int

const (
	// Degrade treats decode failures and host faults as Continue.
	Degrade Policy = iota
	// Propagate aborts the conversion on the first decode failure or host
	// fault.
	Propagate
)

func (p Policy) String() string {
	if p == Propagate {
		return "propagate"
	}
	return "degrade"
}

// ParsePolicy parses "degrade" or "propagate".
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "degrade":
		return Degrade, true
	case "propagate":
		return Propagate, true
	}
	return Degrade, false
}

// Settings is the configuration shared by all bridges.
type Settings struct {
	Policy Policy
	Logger *slog.Logger
	// Timeout bounds one callback round trip on bridges that cross a
	// goroutine boundary. Zero means the bridge default.
	Timeout time.Duration
}

// Option configures a bridge.
type Option func(*Settings)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(s *Settings) {
		s.Policy = p
	}
}

// WithLogger sets the logger absorbed failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithTimeout bounds each callback round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Settings) {
		s.Timeout = d
	}
}

func newSettings(opts []Option) Settings {
	s := Settings{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
