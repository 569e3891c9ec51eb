// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package pvmlog is the structured leveled logger used throughout the PVM
// core, standing in for the original interpreter's ad-hoc debug logger
// parameter with a process-wide, level-filtered facility.
package pvmlog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a log verbosity threshold.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "?"
	}
}

var globalLevel atomic.Int32

func init() {
	globalLevel.Store(int32(LevelInfo))
}

// SetLevel changes the process-wide verbosity threshold.
func SetLevel(l Level) { globalLevel.Store(int32(l)) }

var out io.Writer = colorable.NewColorable(os.Stderr)

var levelColor = map[Level]*color.Color{
	LevelError: color.New(color.FgRed, color.Bold),
	LevelWarn:  color.New(color.FgYellow),
	LevelInfo:  color.New(color.FgGreen),
	LevelDebug: color.New(color.FgCyan),
	LevelTrace: color.New(color.FgMagenta),
}

// Logger emits leveled, component-tagged log lines.
type Logger struct {
	component string
}

// New returns a Logger tagged with component, e.g. "pvm/interpreter".
func New(component string) Logger {
	return Logger{component: component}
}

func (lg Logger) log(lvl Level, msg string, kv []interface{}) {
	if Level(globalLevel.Load()) < lvl {
		return
	}
	c := levelColor[lvl]
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		c = color.New()
	}
	ts := time.Now().Format("15:04:05.000")
	buf := fmt.Sprintf("%s %s %-20s %s", ts, c.Sprint(lvl.String()), lg.component, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		buf += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	if lvl == LevelTrace {
		buf += " caller=" + fmt.Sprint(stack.Caller(2))
	}
	fmt.Fprintln(out, buf)
}

func (lg Logger) Error(msg string, kv ...interface{}) { lg.log(LevelError, msg, kv) }
func (lg Logger) Warn(msg string, kv ...interface{})  { lg.log(LevelWarn, msg, kv) }
func (lg Logger) Info(msg string, kv ...interface{})  { lg.log(LevelInfo, msg, kv) }
func (lg Logger) Debug(msg string, kv ...interface{}) { lg.log(LevelDebug, msg, kv) }
func (lg Logger) Trace(msg string, kv ...interface{}) { lg.log(LevelTrace, msg, kv) }

// Dump renders v with go-spew at Trace level, for deep inspection of
// register files or memory pages during debugging sessions.
func (lg Logger) Dump(label string, v interface{}) {
	if Level(globalLevel.Load()) < LevelTrace {
		return
	}
	lg.Trace(label + "\n" + spew.Sdump(v))
}
