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

// Backend names the two execution engines a supervisor may select between
// (spec.md §6: "The core reads a single runtime selector (PVM_MODE)
// choosing between the interpreter and recompiler back-ends").
type Backend string

const (
	BackendInterpreter Backend = "interpreter"
	BackendRecompiler  Backend = "recompiler"
)

// Execute runs inv on the named backend with the given gas budget, routing
// HOST terminations through host if non-nil. It is the single entry point
// supervisors should use once an Invocation has been built; both backends
// satisfy the observational-equivalence requirement of spec.md §4.6, so
// callers may switch backends without changing any other call site.
func Execute(backend Backend, inv *Invocation, gas int64, host HostDispatcher) TerminationRecord {
	switch backend {
	case BackendRecompiler:
		return NewRecompiler(inv.Program, host).Execute(inv.PC, gas, inv.Regs, inv.Memory)
	default:
		return NewInterpreter(inv.Program, host, nil).Execute(inv.PC, gas, inv.Regs, inv.Memory)
	}
}
