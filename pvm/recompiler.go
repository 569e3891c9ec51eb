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
	"runtime/debug"

	"github.com/probechain/pvm/internal/pvmlog"
)

// Recompiler is the JIT execution back-end (spec.md §4.6). It runs the
// same compiled basic blocks as the Interpreter, but over a real mmap'd
// guest address space that is mprotect-protected page by page, so a
// violation is caught by the host rather than by a software bounds check.
//
// It is observationally equivalent to the Interpreter: for the same
// program, initial state, and gas budget, both back-ends return the same
// (status, pc, gas_remaining, regs, accessible memory contents).
type Recompiler struct {
	prog  *Program
	cache *blockCache
	host  HostDispatcher
	log   pvmlog.Logger
}

// NewRecompiler builds a recompiler for prog. host may be nil, matching
// Interpreter's contract for unserviced HOST terminations.
func NewRecompiler(prog *Program, host HostDispatcher) *Recompiler {
	return &Recompiler{
		prog:  prog,
		cache: newBlockCache(prog),
		host:  host,
		log:   pvmlog.New("pvm/recompiler"),
	}
}

// Execute runs prog starting at pc. If mem is not already backed by a host
// mapping, Execute materializes one and copies mem's accessible pages into
// it before running, so callers may build an Invocation once and hand its
// lazily-allocated Memory to either back-end interchangeably. pc must be a
// basic-block entry; as in Interpreter.Execute, pc values visited after the
// first are either validated by branch/djump or are HOST-resume points that
// are never themselves block entries.
func (rc *Recompiler) Execute(pc uint32, gas int64, regs [RegisterCount]uint64, mem *Memory) TerminationRecord {
	mapped := mem
	if mem.arena == nil {
		m, err := NewMappedMemory()
		if err != nil {
			return TerminationRecord{Status: statusPanic("recompiler: %v", err), PC: pc, GasRemain: gas, Regs: regs, Memory: mem}
		}
		snapshotInto(m, mem)
		mapped = m
	}

	if !rc.prog.IsBasicBlockEntry(pc) {
		return rc.record(statusPanic("pc=0x%08x is not a basic-block entry", pc), pc, gas, regs, mapped)
	}

	for {
		block, st := rc.cache.get(pc)
		if st.Kind != Continue {
			return rc.record(st, pc, gas, regs, mapped)
		}

		st, next := rc.runBlock(block, &regs, mapped, &gas)

		if st.Kind == Host && rc.host != nil {
			st = rc.host.Dispatch(st.Index, &regs, mapped, &gas)
			if st.Kind == Continue {
				pc = next
				continue
			}
			return rc.record(st, next, gas, regs, mapped)
		}

		switch st.Kind {
		case Continue:
			pc = next
			continue
		default:
			return rc.record(st, next, gas, regs, mapped)
		}
	}
}

// faultAddresser is the interface debug.SetPanicOnFault's documentation
// promises the recovered panic value satisfies: the faulting address, as
// an absolute host pointer into the arena's mmap'd buffer.
type faultAddresser interface{ Addr() uintptr }

// runBlock executes block inside the signal/trap plane (spec.md §4.6):
// a host access fault anywhere in the mmap'd window, rather than crashing
// the process, unwinds to here and is reported as PAGE_FAULT carrying the
// real faulting guest address and, as the interpreter reports it, the
// faulting instruction's fallthrough PC.
func (rc *Recompiler) runBlock(block *basicBlock, regs *[RegisterCount]uint64, mem *Memory, gas *int64) (st Status, next uint32) {
	debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(false)
	gasBefore := *gas
	defer func() {
		if r := recover(); r != nil {
			var addr uint32
			if fa, ok := r.(faultAddresser); ok && mem.arena != nil {
				if guestAddr, ok := mem.arena.faultToGuestAddr(fa.Addr()); ok {
					addr = guestAddr
				}
			}
			rc.log.Debug("host fault trapped", "recover", r, "addr", addr)
			rc.log.Dump("registers at fault", *regs)
			st, next = statusPageFault(addr), 0
			// The faulting instruction is the last one whose gas was charged.
			spent := gasBefore - *gas
			for i := range block.instrs {
				in := &block.instrs[i]
				spent -= in.info.Gas
				if spent <= 0 {
					next = in.pc + 1 + uint32(rc.prog.Skip(in.pc))
					break
				}
			}
		}
	}()
	return block.execute(regs, mem, rc.prog, gas)
}

func (rc *Recompiler) record(st Status, pc uint32, gas int64, regs [RegisterCount]uint64, mem *Memory) TerminationRecord {
	rc.log.Debug("terminated", "status", st.String(), "pc", pc, "gas", gas)
	return TerminationRecord{Status: st, PC: pc, GasRemain: gas, Regs: regs, Memory: mem}
}

// snapshotInto copies every accessible page's permission and contents from
// src into dst, used to hand a lazily-built Invocation's Memory to the
// recompiler's mmap-backed Memory. Pages holding data are seeded with
// AccessWrite first regardless of their final mode: dst.Write now goes
// straight through the host mapping, and a page mprotect-ed down to
// read-only before being seeded would fault on the seeding write itself.
func snapshotInto(dst, src *Memory) {
	for page, e := range src.pages {
		if e.mode == AccessNone {
			continue
		}
		addr := page * PageSize
		if e.data != nil {
			dst.AlterAccessibility(addr, PageSize, AccessWrite)
			dst.Write(addr, e.data[:])
		}
		dst.AlterAccessibility(addr, PageSize, e.mode)
	}
	dst.SetHeapBreak(src.HeapBreak())
}
