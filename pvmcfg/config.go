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

// Package pvmcfg holds the supervisor-tunable configuration of the PVM
// core: which back-end to run and the advisory host-call gas table
// (spec.md §9: "Host-call gas costs are advisory constants in this core;
// supervisors may adjust").
package pvmcfg

import (
	"os"
	"strings"

	"github.com/naoina/toml"

	"github.com/probechain/pvm/pvm"
)

// Defaults contains the configuration used when no file is loaded and
// PVM_MODE is unset.
var Defaults = Config{
	Backend:        pvm.BackendInterpreter,
	DefaultHostGas: 10,
	HostCallGas:    map[uint64]int64{},
}

// Config is the supervisor-tunable configuration of the PVM core.
type Config struct {
	// Backend chooses the execution engine; overridden at process start by
	// the PVM_MODE environment variable (spec.md §6).
	Backend pvm.Backend `toml:",omitempty"`

	// DefaultHostGas is charged for any host-call index with no entry in
	// HostCallGas.
	DefaultHostGas int64 `toml:",omitempty"`

	// HostCallGas overrides the gas cost of specific host-call indices.
	HostCallGas map[uint64]int64 `toml:"-"`
}

// LoadFile reads a TOML config file, starting from Defaults and overriding
// only the fields present in the file.
func LoadFile(path string) (Config, error) {
	cfg := Defaults
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// New returns Defaults with the PVM_MODE environment override applied.
func New() Config {
	cfg := Defaults
	cfg.applyEnv()
	return cfg
}

// applyEnv applies the PVM_MODE runtime selector (spec.md §6: "The core
// reads a single runtime selector (PVM_MODE) choosing between the
// interpreter and recompiler back-ends").
func (c *Config) applyEnv() {
	switch strings.ToLower(os.Getenv("PVM_MODE")) {
	case "interpreter":
		c.Backend = pvm.BackendInterpreter
	case "recompiler", "jit":
		c.Backend = pvm.BackendRecompiler
	}
}
