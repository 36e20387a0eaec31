package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/boolfunc"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/gatelib"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/hdl"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/logging"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

const (
	topModule  = "top"
	inputFile  = "in.v"
	genlibFile = "cells.genlib"
	outputFile = "out.v"

	// outputTail bounds the tool output quoted in errors.
	outputTail = 2048
)

// Yosys synthesizes by running the Yosys/ABC tool chain. Each call works in
// its own scratch directory <TempRoot>/otn-synth-<uuid> and blocks until
// the tool exits or ctx is done.
type Yosys struct {
	Config *Config
	Logger *slog.Logger
}

// NewYosys returns a Yosys synthesizer. A nil cfg selects DefaultConfig.
func NewYosys(cfg *Config, log *slog.Logger) *Yosys {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Yosys{Config: cfg, Logger: log}
}

func (y *Yosys) config() *Config {
	if y.Config == nil {
		return DefaultConfig()
	}
	return y.Config
}

// Binary returns the path of the synthesis tool: Binary when it is a path
// or found in PATH, otherwise the first executable search path.
func (y *Yosys) Binary() (string, error) {
	cfg := y.config()
	if cfg.Binary != "" {
		if strings.ContainsRune(cfg.Binary, filepath.Separator) {
			if isExecutable(cfg.Binary) {
				return cfg.Binary, nil
			}
		} else if path, err := exec.LookPath(cfg.Binary); err == nil {
			return path, nil
		}
	}
	for _, p := range cfg.SearchPaths {
		if isExecutable(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("synth: %w: %s not found in PATH or %v", netlist.ErrExternalTool, cfg.Binary, cfg.SearchPaths)
}

// Available reports whether the tool can be found.
func (y *Yosys) Available() bool {
	_, err := y.Binary()
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}

// Synthesize implements Synthesizer.
func (y *Yosys) Synthesize(ctx context.Context, functions map[string]boolfunc.Function, lib *gatelib.Library) (*netlist.Netlist, error) {
	if lib == nil || len(functions) == 0 {
		return nil, fmt.Errorf("synth: %w: functions and a library are required", netlist.ErrInvalidArgument)
	}
	cfg := y.config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.OrDiscard(y.Logger)

	bin, err := y.Binary()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cfg.tempRoot(), "otn-synth-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("synth: %w: create scratch directory: %w", netlist.ErrIO, err)
	}
	if cfg.KeepTemp {
		log.Info("keeping synthesis scratch directory", "dir", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	input := filepath.Join(dir, inputFile)
	genlib := filepath.Join(dir, genlibFile)
	output := filepath.Join(dir, outputFile)

	var src bytes.Buffer
	if err := hdl.WriteFunctions(&src, topModule, functions); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	if err := os.WriteFile(input, src.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("synth: %w: %w", netlist.ErrIO, err)
	}
	var cells bytes.Buffer
	count, err := WriteGenlib(&cells, lib)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(genlib, cells.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("synth: %w: %w", netlist.ErrIO, err)
	}

	script := cfg.expand(input, genlib, output, topModule)
	command := shellQuote(bin) + " -q -p " + shellQuote(script)
	log.Debug("running synthesis", "dir", dir, "cells", count, "outputs", len(functions))

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("synth: %w: %w", netlist.ErrExternalTool, ctxErr)
		}
		return nil, fmt.Errorf("synth: %w: %s failed: %w: %s", netlist.ErrExternalTool, filepath.Base(bin), err, tail(out))
	}
	if _, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("synth: %w: %s wrote no output: %s", netlist.ErrExternalTool, filepath.Base(bin), tail(out))
	}

	nl, err := hdl.LoadNetlist(output, lib)
	if err != nil {
		if errors.Is(err, netlist.ErrIO) {
			return nil, fmt.Errorf("synth: %w: %w", netlist.ErrExternalTool, err)
		}
		return nil, fmt.Errorf("synth: reading synthesis result: %w", err)
	}
	log.Debug("synthesis finished", "gates", nl.NumGates(), "nets", nl.NumNets())
	return nl, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > outputTail {
		s = "..." + s[len(s)-outputTail:]
	}
	return s
}
