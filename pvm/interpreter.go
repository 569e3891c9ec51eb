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

import "github.com/probechain/pvm/internal/pvmlog"

// Tracer observes block-by-block execution. Implementations must not
// mutate the state they are given; supplying one is optional and has no
// effect on semantics, mirroring the original interpreter's optional debug
// logger parameter.
type Tracer interface {
	OnBlock(pc uint32, gasBefore int64)
}

// Interpreter is the decoded execution back-end (spec.md §4.5): it drives
// block-by-block execution, accounts gas, and converts traps to typed
// status codes.
type Interpreter struct {
	prog   *Program
	cache  *blockCache
	host   HostDispatcher
	tracer Tracer
	log    pvmlog.Logger
}

// NewInterpreter builds an interpreter for prog. host may be nil, in which
// case HOST terminations are returned to the caller rather than serviced
// internally. tracer may be nil.
func NewInterpreter(prog *Program, host HostDispatcher, tracer Tracer) *Interpreter {
	return &Interpreter{
		prog:   prog,
		cache:  newBlockCache(prog),
		host:   host,
		tracer: tracer,
		log:    pvmlog.New("pvm/interpreter"),
	}
}

// Execute runs prog starting at pc with the given gas budget, register
// file, and memory, until a terminal status or (if host is nil) a HOST
// hand-off (spec.md §4.5, §4.7). pc must be a basic-block entry; every
// pc the loop visits afterwards is either produced by a validated branch
// or jump (branch/djump already check IsBasicBlockEntry, per spec.md §8
// property 3) or is a HOST-resume point, which is never a block entry
// when the terminating ecalli sits mid-block.
func (in *Interpreter) Execute(pc uint32, gas int64, regs [RegisterCount]uint64, mem *Memory) TerminationRecord {
	if !in.prog.IsBasicBlockEntry(pc) {
		st := statusPanic("pc=0x%08x is not a basic-block entry", pc)
		return in.record(st, pc, gas, regs, mem)
	}

	for {
		block, st := in.cache.get(pc)
		if st.Kind != Continue {
			return in.record(st, pc, gas, regs, mem)
		}

		if in.tracer != nil {
			in.tracer.OnBlock(pc, gas)
		}
		in.log.Trace("block", "pc", pc, "gas", gas, "instrs", len(block.instrs))

		st, next := block.execute(&regs, mem, in.prog, &gas)

		if st.Kind == Host && in.host != nil {
			st = in.host.Dispatch(st.Index, &regs, mem, &gas)
			if st.Kind == Continue {
				pc = next
				continue
			}
			return in.record(st, next, gas, regs, mem)
		}

		switch st.Kind {
		case Continue:
			pc = next
			continue
		default:
			return in.record(st, next, gas, regs, mem)
		}
	}
}

func (in *Interpreter) record(st Status, pc uint32, gas int64, regs [RegisterCount]uint64, mem *Memory) TerminationRecord {
	in.log.Debug("terminated", "status", st.String(), "pc", pc, "gas", gas)
	return TerminationRecord{Status: st, PC: pc, GasRemain: gas, Regs: regs, Memory: mem}
}
