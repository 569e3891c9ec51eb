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
	"github.com/google/uuid"
	"github.com/probechain/pvm/internal/pvmlog"
)

// HostHandler services one host-call index. It sees the full register file
// and memory. A handler that fails a memory precondition should return a
// PANIC status; one that detects a semantic error should instead write a
// sentinel into register 7 and return statusContinue() (spec.md §4.7).
type HostHandler func(regs *[RegisterCount]uint64, mem *Memory) Status

// HostDispatcher resolves a HOST(index) termination to either CONTINUE
// (the interpreter resumes after ecalli) or a terminal status.
type HostDispatcher interface {
	Dispatch(index uint64, regs *[RegisterCount]uint64, mem *Memory, gas *int64) Status
}

// Dispatcher is the default HostDispatcher: an index-keyed handler table
// with per-index (or default) gas costs, charged before the handler runs
// (spec.md §4.7: "pays the table's gas cost... if that drives gas negative
// the result is OUT_OF_GAS").
type Dispatcher struct {
	handlers   map[uint64]HostHandler
	gasTable   map[uint64]int64
	defaultGas int64
	log        pvmlog.Logger
}

// NewDispatcher returns an empty dispatcher charging defaultGas for any
// index without a specific entry in gasTable (DESIGN.md Open Question 3:
// host-call gas is supervisor-overridable).
func NewDispatcher(defaultGas int64) *Dispatcher {
	return &Dispatcher{
		handlers:   make(map[uint64]HostHandler),
		gasTable:   make(map[uint64]int64),
		defaultGas: defaultGas,
		log:        pvmlog.New("pvm/hostcall"),
	}
}

// Register installs the handler for index, optionally overriding its gas
// cost (pass a negative cost to use defaultGas).
func (d *Dispatcher) Register(index uint64, cost int64, h HostHandler) {
	d.handlers[index] = h
	if cost >= 0 {
		d.gasTable[index] = cost
	}
}

// SetGas overrides the gas cost of index without touching its handler,
// for supervisors that only want to retune the advisory cost table
// (spec.md §9: host-call gas costs are advisory constants in this core).
func (d *Dispatcher) SetGas(index uint64, cost int64) {
	d.gasTable[index] = cost
}

// Dispatch implements HostDispatcher.
func (d *Dispatcher) Dispatch(index uint64, regs *[RegisterCount]uint64, mem *Memory, gas *int64) Status {
	id := uuid.New()
	cost := d.defaultGas
	if c, ok := d.gasTable[index]; ok {
		cost = c
	}
	*gas -= cost
	if *gas < 0 {
		d.log.Debug("host call starved gas", "call", id, "index", index)
		return statusOutOfGas()
	}
	h, ok := d.handlers[index]
	if !ok {
		return statusPanic("unknown host-call index %d", index)
	}
	d.log.Debug("host call dispatched", "call", id, "index", index, "gas_left", *gas)
	return h(regs, mem)
}

// writeSentinel writes s into register 7, the host-call result slot
// (spec.md §6).
func writeSentinel(regs *[RegisterCount]uint64, s uint64) {
	regs[7] = s
}
