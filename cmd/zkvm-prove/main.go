// Command zkvm-prove is a thin driver over the library packages: it loads
// a config.Config, builds a program.Image from a JSON fixture (no ELF
// parsing — spec.md keeps that external), runs the Harvard pass to
// determine the memory footprint, runs the Linear pass to record the
// step trace, and invokes the prover driver (SPEC_FULL.md §10.4). All
// logic lives in config/emulator/chips/prover; this file only wires them
// together.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rvzk/zkvm/backend/reference"
	"github.com/rvzk/zkvm/config"
	"github.com/rvzk/zkvm/emulator"
	"github.com/rvzk/zkvm/memory"
	"github.com/rvzk/zkvm/program"
	"github.com/rvzk/zkvm/prover"
)

// Version is set at build time with -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

// fixture is the JSON shape a program image is loaded from: the
// in-memory substitute for ELF ingestion spec.md explicitly excludes.
type fixture struct {
	Base         uint32           `json:"base"`
	Entry        *uint32          `json:"entry,omitempty"`
	Instructions []uint32         `json:"instructions"`
	ROData       map[string]uint8 `json:"rodata,omitempty"`
	RWData       map[string]uint8 `json:"rwdata,omitempty"`
}

func loadImage(path string) (*program.Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied fixture path
	if err != nil {
		return nil, fmt.Errorf("zkvm-prove: reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("zkvm-prove: parsing fixture: %w", err)
	}
	img := program.NewImage(fx.Base, fx.Instructions)
	if fx.Entry != nil {
		img.Entry = *fx.Entry
	}
	for addrHex, b := range fx.ROData {
		var addr uint32
		if _, err := fmt.Sscanf(addrHex, "0x%x", &addr); err != nil {
			return nil, fmt.Errorf("zkvm-prove: bad rodata address %q: %w", addrHex, err)
		}
		img.SetROData(addr, []byte{b})
	}
	for addrHex, b := range fx.RWData {
		var addr uint32
		if _, err := fmt.Sscanf(addrHex, "0x%x", &addr); err != nil {
			return nil, fmt.Errorf("zkvm-prove: bad rwdata address %q: %w", addrHex, err)
		}
		img.SetRWData(addr, []byte{b})
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func run() error {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		programPath = flag.String("program", "", "Path to a JSON program fixture (required)")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config path)")
		outPath     = flag.String("out", "", "Write the proof bytes to this file (default: stdout summary only)")
		stackSize   = flag.Uint("stack-size", 256, "Stack segment size in bytes for the Harvard pass")
		outputSize  = flag.Uint("output-size", 4, "Output buffer size in bytes for the Harvard pass")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("zkvm-prove %s\n", Version)
		return nil
	}
	if *programPath == "" {
		return fmt.Errorf("zkvm-prove: -program is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	img, err := loadImage(*programPath)
	if err != nil {
		return err
	}

	hmem := memory.NewHarvardMemory(img.Base, len(img.Instructions), nil, uint32(*outputSize), img.DataEnd(), uint32(*stackSize))
	he := emulator.NewHarvardEmulator(img.Entry, hmem, emulator.NewRegistry(), nil)
	stats, err := he.Run()
	if err != nil {
		return fmt.Errorf("zkvm-prove: harvard pass: %w", err)
	}
	if cfg.Execution.EnableStats {
		fmt.Fprintf(os.Stderr, "harvard pass halted=%v exit=%d\n", he.Env.Halted, he.Env.ExitCode)
	}

	le := emulator.FromHarvard(img, stats, nil, nil, emulator.NewRegistry())
	if err := le.Run(); err != nil {
		return fmt.Errorf("zkvm-prove: linear pass: %w", err)
	}
	back := reference.New(cfg.Trace.BlowupFactor)
	proof, err := prover.RunWithLimit(back, img, le.Steps, cfg.Execution.MaxSteps)
	if err != nil {
		return fmt.Errorf("zkvm-prove: proving: %w", err)
	}

	fmt.Printf("steps=%d log_size=%d twiddle_depth=%d proof_bytes=%d\n",
		len(le.Steps), proof.LogSize, proof.TwiddleDepth, len(proof.Bytes))

	if *outPath != "" {
		if err := os.WriteFile(*outPath, proof.Bytes, 0644); err != nil {
			return fmt.Errorf("zkvm-prove: writing proof: %w", err)
		}
	}

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
