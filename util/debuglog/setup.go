// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package debuglog configures Logrus for the patterntype binaries: file and
// line of the caller relative to the repository root, UTC timestamps with
// subsecond precision, and an optional debug level.
//
// Every main package should call Configure before doing any work.
package debuglog

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options control the logger's behavior. The zero value logs at info level
// without colors to the standard Logrus logger.
type Options struct {
	// If true, the logger will highlight some output with ANSI colors. This
	// may be overridden by setting the environment variable "CLICOLOR_FORCE"
	// to "1".
	ForceColors bool

	// If true, debug level messages are emitted. This includes the dumps of
	// per-pattern hierarchies, which can be large.
	Verbose bool

	// If not nil, this logger is configured instead of logrus.StandardLogger().
	// Used by unit tests.
	Logger *logrus.Logger
}

// Configure sets up the logger. It's safe to call more than once, but not
// concurrently.
func Configure(opts Options) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	opts.Logger.SetReportCaller(true)
	opts.Logger.ReplaceHooks(make(logrus.LevelHooks))
	opts.Logger.AddHook(utcHook{})
	opts.Logger.AddHook(newFilenameHook())
	opts.Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:             true,
		TimestampFormat:           "2006-01-02 15:04:05.000000 MST",
		ForceColors:               opts.ForceColors,
		EnvironmentOverrideColors: true,
	})
	level := logrus.InfoLevel
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	opts.Logger.SetLevel(level)
	opts.Logger.WithFields(logrus.Fields{
		"forceColors": opts.ForceColors,
		"logLevel":    level.String(),
	}).Info("Initialized Logrus")
}

// utcHook converts each entry's timestamp to UTC.
type utcHook struct{}

func (utcHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (utcHook) Fire(entry *logrus.Entry) error {
	entry.Time = entry.Time.UTC()
	return nil
}

// filenameHook strips the directory that contains the repository from the
// caller's file name, which would otherwise be repeated in every message.
type filenameHook struct {
	prefix string
}

// thisFile is the path of this source file relative to the repository root.
const thisFile = "util/debuglog/setup.go"

func newFilenameHook() filenameHook {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filenameHook{}
	}
	if !strings.HasSuffix(file, thisFile) {
		panic(fmt.Sprintf("debuglog: cannot compute the repository prefix: "+
			"got %v which doesn't end in %v", file, thisFile))
	}
	return filenameHook{prefix: file[:len(file)-len(thisFile)]}
}

func (hook filenameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook filenameHook) Fire(entry *logrus.Entry) error {
	if entry.HasCaller() {
		entry.Caller.File = strings.TrimPrefix(entry.Caller.File, hook.prefix)
	}
	return nil
}
