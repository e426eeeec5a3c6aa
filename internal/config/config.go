package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dmerida/courtplan/pkg/core/prefparse"
)

// Options is the full configuration surface of a scheduling run. Values can
// come from the optional courtplan.yaml defaults file and are overridden by
// command-line flags.
type Options struct {
	// Input is the path to the input workbook.
	Input string `yaml:"input" validate:"required"`

	// GroupSize is the maximum number of players in each group.
	GroupSize int `yaml:"groupSize" validate:"min=1"`

	// Output is the path the result workbook is written to.
	Output string `yaml:"output" validate:"required"`

	// Duration is the solver time limit in seconds.
	Duration int `yaml:"duration" validate:"min=1"`

	// Threads is the number of threads used by the solver.
	Threads int `yaml:"threads" validate:"min=1"`

	// DummyPenalty is the objective penalty for assigning a match to a
	// dummy slot.
	DummyPenalty int `yaml:"dummyPenalty" validate:"min=0"`

	// BackToBackPenalty is the objective penalty for assigning a player's
	// match to back-to-back slots.
	BackToBackPenalty int `yaml:"backToBackPenalty" validate:"min=0"`

	// ParsePreferences bypasses grouping and solving and only runs the
	// raw-preference translation pass.
	ParsePreferences bool `yaml:"parsePreferences"`

	// Translation configures the raw-preference translation; required only
	// when ParsePreferences is set.
	Translation prefparse.Translation `yaml:"translation"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the built-in option defaults.
func Default() *Options {
	return &Options{
		Input:             "tennis.xlsx",
		GroupSize:         4,
		Output:            "tennis_schedules.xlsx",
		Duration:          30,
		Threads:           10,
		DummyPenalty:      1,
		BackToBackPenalty: 1,
	}
}

// Load returns the defaults merged with courtplan.yaml when one is found in
// the current directory or the user's home directory.
func Load() (*Options, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return Default(), nil
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads the defaults file from a specific path on top of the
// built-in defaults.
func LoadFromPath(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return opts, nil
}

// Validate checks the option values, including the cross-field requirement
// that preference-parsing mode carries a translation table.
func Validate(opts *Options) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if opts.ParsePreferences && len(opts.Translation.TimeBlocks) == 0 {
		return fmt.Errorf("config validation failed: parsePreferences requires a translation.timeBlocks table")
	}

	return nil
}

// findConfigFile searches for courtplan.yaml in the current directory and
// the home directory. An empty path without error means no defaults file.
func findConfigFile() (string, error) {
	const configFileName = "courtplan.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", nil
}
