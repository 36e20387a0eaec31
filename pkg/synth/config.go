package synth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// DefaultScript is the Yosys script run for every synthesis job. The
// placeholders {input}, {genlib}, {output} and {top} are replaced by the
// scratch file paths and the module name.
const DefaultScript = "read_verilog {input}; synth -flatten -top {top}; " +
	"abc -genlib {genlib}; opt_clean; write_verilog -noattr -noexpr -simple-lhs {output}"

// Config controls how the external synthesis tool is located and run.
type Config struct {
	// Binary is the tool name looked up in PATH, or a path to it.
	Binary string `yaml:"binary"`

	// SearchPaths are probed in order when Binary is not found in PATH.
	SearchPaths []string `yaml:"search_paths"`

	// KeepTemp leaves scratch directories in place for inspection.
	KeepTemp bool `yaml:"keep_temp"`

	// TempRoot holds the scratch directories. Empty selects os.TempDir.
	TempRoot string `yaml:"temp_root"`

	// Script is the command sequence passed to the tool.
	Script string `yaml:"script"`
}

// DefaultConfig returns a Config looking for yosys in PATH and the usual
// install locations.
func DefaultConfig() *Config {
	return &Config{
		Binary: "yosys",
		SearchPaths: []string{
			"/usr/bin/yosys",
			"/usr/local/bin/yosys",
			"/opt/homebrew/bin/yosys",
			"/opt/oss-cad-suite/bin/yosys",
		},
		Script: DefaultScript,
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("synth: %w: %w", netlist.ErrIO, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("synth: %w: parse %s: %w", netlist.ErrInvalidArgument, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return cfg, nil
}

// Validate checks that the tool can be looked up and that the script names
// its input and output files.
func (c *Config) Validate() error {
	if c.Binary == "" && len(c.SearchPaths) == 0 {
		return fmt.Errorf("synth: %w: no binary or search paths configured", netlist.ErrInvalidArgument)
	}
	if c.Script == "" {
		c.Script = DefaultScript
	}
	for _, p := range []string{"{input}", "{output}"} {
		if !strings.Contains(c.Script, p) {
			return fmt.Errorf("synth: %w: script lacks the %s placeholder", netlist.ErrInvalidArgument, p)
		}
	}
	return nil
}

func (c *Config) tempRoot() string {
	if c.TempRoot != "" {
		return c.TempRoot
	}
	return os.TempDir()
}

// expand fills the script placeholders.
func (c *Config) expand(input, genlib, output, top string) string {
	return strings.NewReplacer(
		"{input}", input,
		"{genlib}", genlib,
		"{output}", output,
		"{top}", top,
	).Replace(c.Script)
}
