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

// Command pvm runs a PVM program blob against the decoded interpreter or
// the recompiler back-end and prints the resulting termination record.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/probechain/pvm/internal/pvmlog"
	"github.com/probechain/pvm/pvm"
	"github.com/probechain/pvm/pvmcfg"
)

var (
	codeFlag = cli.StringFlag{
		Name:  "code",
		Usage: "Path to a code container blob (read-only/read-write data + program)",
	}
	argsFlag = cli.StringFlag{
		Name:  "args",
		Usage: "Path to the argument bytes passed to the invocation",
	}
	gasFlag = cli.Int64Flag{
		Name:  "gas",
		Usage: "Gas budget for the invocation",
		Value: 1_000_000,
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable trace-level logging",
	}

	runCommand = cli.Command{
		Action:    runProgram,
		Name:      "run",
		Usage:     "Execute a code container and print the termination record",
		ArgsUsage: "",
		Flags:     []cli.Flag{codeFlag, argsFlag, gasFlag, configFlag, verboseFlag},
	}

	disasmCommand = cli.Command{
		Action:    disasmProgram,
		Name:      "disasm",
		Usage:     "Disassemble a raw program blob",
		ArgsUsage: "<program.bin>",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "pvm"
	app.Usage = "PVM execution core command-line harness"
	app.Commands = []cli.Command{runCommand, disasmCommand}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProgram(ctx *cli.Context) error {
	if ctx.Bool(verboseFlag.Name) {
		pvmlog.SetLevel(pvmlog.LevelTrace)
	}

	cfg := pvmcfg.New()
	if file := ctx.String(configFlag.Name); file != "" {
		loaded, err := pvmcfg.LoadFile(file)
		if err != nil {
			return fmt.Errorf("pvm: loading config: %w", err)
		}
		cfg = loaded
	}

	codePath := ctx.String(codeFlag.Name)
	if codePath == "" {
		return fmt.Errorf("pvm: -code is required")
	}
	codeBytes, err := os.ReadFile(codePath)
	if err != nil {
		return fmt.Errorf("pvm: reading code: %w", err)
	}

	var args []byte
	if argsPath := ctx.String(argsFlag.Name); argsPath != "" {
		args, err = os.ReadFile(argsPath)
		if err != nil {
			return fmt.Errorf("pvm: reading args: %w", err)
		}
	}

	code, err := pvm.DecodeCodeContainer(codeBytes)
	if err != nil {
		return fmt.Errorf("pvm: decoding code container: %w", err)
	}
	inv, err := pvm.BuildInvocation(code, args)
	if err != nil {
		return fmt.Errorf("pvm: building invocation: %w", err)
	}

	dispatcher := pvm.NewDispatcher(cfg.DefaultHostGas)
	pvm.RegisterDemoHandlers(dispatcher)
	for index, cost := range cfg.HostCallGas {
		dispatcher.SetGas(index, cost)
	}

	rec := pvm.Execute(cfg.Backend, inv, ctx.Int64(gasFlag.Name), dispatcher)

	fmt.Printf("status:     %s\n", rec.Status)
	fmt.Printf("pc:         0x%08x\n", rec.PC)
	fmt.Printf("gas_remain: %d\n", rec.GasRemain)
	for i, v := range rec.Regs {
		fmt.Printf("r%-2d = 0x%016x\n", i, v)
	}
	return nil
}

func disasmProgram(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("pvm: usage: pvm disasm <program.bin>")
	}
	blob, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return fmt.Errorf("pvm: reading program: %w", err)
	}
	prog, err := pvm.DecodeProgram(blob)
	if err != nil {
		return fmt.Errorf("pvm: decoding program: %w", err)
	}
	fmt.Print(pvm.Disassemble(prog))
	return nil
}
