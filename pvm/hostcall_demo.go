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

import "golang.org/x/crypto/sha3"

// HostIndexSHA3 is the conventional index for the illustrative SHA3-256
// host call registered by RegisterDemoHandlers. The core defines no crypto
// opcodes of its own (spec.md §6's opcode table has none); cryptographic
// services belong to the supervisor's host-call table, of which this is a
// worked example.
const HostIndexSHA3 = 1

// RegisterDemoHandlers installs the illustrative SHA3 handler on d. Real
// supervisors register their own service-specific handler tables; this one
// exists to exercise the host-call boundary end to end.
//
// Calling convention: r8 = input address, r9 = input length, r10 = output
// address (32 bytes). On success r7 = SentinelOK; if either region is
// inaccessible, r7 = SentinelOOB and no memory is written.
func RegisterDemoHandlers(d *Dispatcher) {
	d.Register(HostIndexSHA3, -1, hostSHA3)
}

func hostSHA3(regs *[RegisterCount]uint64, mem *Memory) Status {
	inAddr := uint32(regs[8])
	inLen := uint32(regs[9])
	outAddr := uint32(regs[10])

	input, st := mem.Read(inAddr, inLen)
	if st.Kind != Continue {
		writeSentinel(regs, SentinelOOB)
		return statusContinue()
	}

	digest := sha3.Sum256(input)
	if st := mem.Write(outAddr, digest[:]); st.Kind != Continue {
		writeSentinel(regs, SentinelOOB)
		return statusContinue()
	}

	writeSentinel(regs, SentinelOK)
	return statusContinue()
}
