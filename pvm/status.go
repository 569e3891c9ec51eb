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

package pvm

import (
	"fmt"

	"github.com/go-stack/stack"
)

// StatusKind identifies why an execution stopped.
type StatusKind uint8

const (
	// Continue is an internal-only status: the block compiler and
	// instruction dispatch use it to mean "keep executing the current
	// basic block". It never escapes Execute.
	Continue StatusKind = iota
	Halt
	Panic
	PageFault
	Host
	OutOfGas
)

func (k StatusKind) String() string {
	switch k {
	case Continue:
		return "CONTINUE"
	case Halt:
		return "HALT"
	case Panic:
		return "PANIC"
	case PageFault:
		return "PAGE_FAULT"
	case Host:
		return "HOST"
	case OutOfGas:
		return "OUT_OF_GAS"
	default:
		return "UNKNOWN"
	}
}

// Status carries the outcome of one instruction, one basic block, or one
// full Execute call. PageFault carries the faulting guest address; Host
// carries the requested host-call index.
type Status struct {
	Kind    StatusKind
	Addr    uint32 // valid when Kind == PageFault
	Index   uint64 // valid when Kind == Host
	Caller  stack.CallStack
	Message string
}

func (s Status) String() string {
	switch s.Kind {
	case PageFault:
		return fmt.Sprintf("PAGE_FAULT(0x%08x)", s.Addr)
	case Host:
		return fmt.Sprintf("HOST(%d)", s.Index)
	default:
		return s.Kind.String()
	}
}

func statusHalt() Status { return Status{Kind: Halt} }

func statusContinue() Status { return Status{Kind: Continue} }

// statusPanic builds a PANIC status, capturing the host call stack for
// post-mortem debugging (spec.md §7: PANIC covers illegal instructions,
// invalid jump targets, corrupted operand decode, forbidden division
// traps, and host-call precondition failures).
func statusPanic(format string, args ...interface{}) Status {
	return Status{
		Kind:    Panic,
		Message: fmt.Sprintf(format, args...),
		Caller:  stack.Trace().TrimRuntime(),
	}
}

func statusPageFault(addr uint32) Status {
	return Status{Kind: PageFault, Addr: addr, Caller: stack.Trace().TrimRuntime()}
}

func statusHost(index uint64) Status {
	return Status{Kind: Host, Index: index}
}

func statusOutOfGas() Status {
	return Status{Kind: OutOfGas}
}

// Host-call result sentinels written to register 7 by handlers (spec.md
// §6). All values are expressed as 2^64 - k for small k, except OK.
const (
	SentinelNone uint64 = ^uint64(0) - 0 // 2^64 - 1
	SentinelWhat uint64 = ^uint64(0) - 1 // 2^64 - 2
	SentinelOOB  uint64 = ^uint64(0) - 2 // 2^64 - 3
	SentinelWho  uint64 = ^uint64(0) - 3 // 2^64 - 4
	SentinelFull uint64 = ^uint64(0) - 4 // 2^64 - 5
	SentinelCore uint64 = ^uint64(0) - 5 // 2^64 - 6
	SentinelCash uint64 = ^uint64(0) - 6 // 2^64 - 7
	SentinelLow  uint64 = ^uint64(0) - 7 // 2^64 - 8
	SentinelHuh  uint64 = ^uint64(0) - 8 // 2^64 - 9
	SentinelOK   uint64 = 0
)

// TerminationRecord is the value Execute returns to the supervisor: the
// final status, program counter, remaining (possibly negative) gas, full
// register file, and a handle to the memory the invocation ran against.
type TerminationRecord struct {
	Status    Status
	PC        uint32
	GasRemain int64
	Regs      [RegisterCount]uint64
	Memory    *Memory
}
