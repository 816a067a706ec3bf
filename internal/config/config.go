// Package config holds the pipeline definition and runner settings.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding settings
const EnvPrefix = "CLIMATEFLOW"

// Step kinds
const (
	KindNotebook = "notebook"
	KindScript   = "script"
)

// Manual input kinds
const (
	ManualFile = "file"
	ManualEnv  = "env"
)

// Config is the immutable description of one pipeline run
type Config struct {
	Title string `mapstructure:"title" yaml:"title"`
	// Root is the invocation root every relative path is resolved against
	Root string `mapstructure:"root" yaml:"root"`
	// Interpreter runs notebooks (via nbconvert) and scripts
	Interpreter       string   `mapstructure:"interpreter" yaml:"interpreter"`
	MinRuntimeVersion string   `mapstructure:"min_runtime_version" yaml:"min_runtime_version"`
	Packages          []string `mapstructure:"packages" yaml:"packages"`
	RequirementsFile  string   `mapstructure:"requirements_file" yaml:"requirements_file"`
	// Directories are created before any check runs
	Directories []string `mapstructure:"directories" yaml:"directories"`
	// RequiredDirs must exist for the layout check to pass
	RequiredDirs []string      `mapstructure:"required_dirs" yaml:"required_dirs"`
	LogDir       string        `mapstructure:"log_dir" yaml:"log_dir"`
	Timeouts     TimeoutConfig `mapstructure:"timeouts" yaml:"timeouts"`
	// ExcerptBytes bounds the diagnostic output shown for a failed step
	ExcerptBytes int                 `mapstructure:"excerpt_bytes" yaml:"excerpt_bytes"`
	FinalDataset string              `mapstructure:"final_dataset" yaml:"final_dataset"`
	Steps        []Step              `mapstructure:"steps" yaml:"steps"`
	ManualInputs []ManualInputConfig `mapstructure:"manual_inputs" yaml:"manual_inputs"`
}

// TimeoutConfig groups the execution bounds
type TimeoutConfig struct {
	// Step bounds one external step process
	Step time.Duration `mapstructure:"step" yaml:"step"`
	// Cell is handed to nbconvert as the per-cell timeout
	Cell time.Duration `mapstructure:"cell" yaml:"cell"`
	// Check bounds each tool probe of the prerequisite gate
	Check time.Duration `mapstructure:"check" yaml:"check"`
}

// Step is one ordered unit of the pipeline
type Step struct {
	Number      int           `mapstructure:"number" yaml:"number"`
	Name        string        `mapstructure:"name" yaml:"name"`
	Description string        `mapstructure:"description" yaml:"description"`
	Kind        string        `mapstructure:"kind" yaml:"kind"`
	Target      string        `mapstructure:"target" yaml:"target"`
	Inputs      []string      `mapstructure:"inputs" yaml:"inputs,omitempty"`
	Outputs     []Artifact    `mapstructure:"outputs" yaml:"outputs,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// Artifact is a file (or glob pattern) a step is contracted to produce
type Artifact struct {
	Path        string `mapstructure:"path" yaml:"path"`
	Description string `mapstructure:"description" yaml:"description"`
}

// ManualInputConfig is an input a human must provide before the run
type ManualInputConfig struct {
	Name          string `mapstructure:"name" yaml:"name"`
	Kind          string `mapstructure:"kind" yaml:"kind"`
	Path          string `mapstructure:"path" yaml:"path,omitempty"`
	EnvVar        string `mapstructure:"env_var" yaml:"env_var,omitempty"`
	Description   string `mapstructure:"description" yaml:"description"`
	Documentation string `mapstructure:"documentation" yaml:"documentation,omitempty"`
	Link          string `mapstructure:"link" yaml:"link,omitempty"`
	// Reminder is printed when the input is present; it never counts as a warning
	Reminder string `mapstructure:"reminder" yaml:"reminder,omitempty"`
}

// StepTimeout returns the process bound for a step
func (c Config) StepTimeout(s Step) time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return c.Timeouts.Step
}

// ExpectedOutputs returns every declared step output in step order
func (c Config) ExpectedOutputs() []Artifact {
	var out []Artifact
	for _, s := range c.Steps {
		out = append(out, s.Outputs...)
	}
	return out
}

// StepIndex returns the position of the step matching a name or number, or -1
func (c Config) StepIndex(ref string) int {
	for i, s := range c.Steps {
		if s.Name == ref || strconv.Itoa(s.Number) == ref || s.Target == ref {
			return i
		}
	}
	return -1
}

// Load reads pipeline.yaml (or the given file), applies environment overrides
// and fills everything left unset from Default.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		path, err := utils.ExpandHomeDir(path)
		if err != nil {
			return Config{}, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pipeline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read pipeline.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	root, err := utils.ExpandHomeDir(cfg.Root)
	if err != nil {
		return Config{}, err
	}
	cfg.Root = root

	cfg = withListDefaults(cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers scalar defaults so environment overrides apply to them
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("title", d.Title)
	v.SetDefault("root", d.Root)
	v.SetDefault("interpreter", d.Interpreter)
	v.SetDefault("min_runtime_version", d.MinRuntimeVersion)
	v.SetDefault("requirements_file", d.RequirementsFile)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("timeouts.step", d.Timeouts.Step)
	v.SetDefault("timeouts.cell", d.Timeouts.Cell)
	v.SetDefault("timeouts.check", d.Timeouts.Check)
	v.SetDefault("excerpt_bytes", d.ExcerptBytes)
	v.SetDefault("final_dataset", d.FinalDataset)
}

// withListDefaults fills list settings the config file left empty
func withListDefaults(cfg Config) Config {
	d := Default()
	if len(cfg.Packages) == 0 {
		cfg.Packages = d.Packages
	}
	if len(cfg.Directories) == 0 {
		cfg.Directories = d.Directories
	}
	if len(cfg.RequiredDirs) == 0 {
		cfg.RequiredDirs = d.RequiredDirs
	}
	if len(cfg.Steps) == 0 {
		cfg.Steps = d.Steps
	}
	if cfg.ManualInputs == nil {
		cfg.ManualInputs = d.ManualInputs
	}
	return cfg
}

// normalize fills per-step defaults: kind and number
func (c *Config) normalize() {
	prev := 0
	for i := range c.Steps {
		if c.Steps[i].Kind == "" {
			c.Steps[i].Kind = KindNotebook
		}
		if c.Steps[i].Number == 0 {
			c.Steps[i].Number = prev + 1
		}
		prev = c.Steps[i].Number
	}
	for i := range c.ManualInputs {
		if c.ManualInputs[i].Kind == "" {
			c.ManualInputs[i].Kind = ManualFile
		}
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	if c.Interpreter == "" {
		return &utils.ValidationError{Field: "interpreter", Message: "interpreter is required"}
	}
	if c.Timeouts.Step <= 0 {
		return &utils.ValidationError{Field: "timeouts.step", Message: "step timeout must be positive"}
	}
	if c.Timeouts.Cell <= 0 {
		return &utils.ValidationError{Field: "timeouts.cell", Message: "cell timeout must be positive"}
	}
	if c.Timeouts.Check <= 0 {
		return &utils.ValidationError{Field: "timeouts.check", Message: "check timeout must be positive"}
	}
	if c.ExcerptBytes <= 0 {
		return &utils.ValidationError{Field: "excerpt_bytes", Message: "excerpt size must be positive"}
	}
	if len(c.Steps) == 0 {
		return &utils.ValidationError{Field: "steps", Message: "at least one step is required"}
	}

	names := make(map[string]bool)
	prev := 0
	for i, s := range c.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if s.Name == "" {
			return &utils.ValidationError{Field: field, Message: "step name is required"}
		}
		if names[s.Name] {
			return &utils.ValidationError{Field: field, Message: fmt.Sprintf("duplicate step name %q", s.Name)}
		}
		names[s.Name] = true
		if s.Number <= prev {
			return &utils.ValidationError{Field: field, Message: fmt.Sprintf("step number %d must be greater than %d", s.Number, prev)}
		}
		prev = s.Number
		if s.Kind != KindNotebook && s.Kind != KindScript {
			return &utils.ValidationError{Field: field, Message: fmt.Sprintf("unsupported step kind %q", s.Kind)}
		}
		if err := utils.ValidateRelativePath(field+".target", s.Target); err != nil {
			return err
		}
		if s.Kind == KindNotebook {
			if err := utils.ValidateFileExtension(s.Target, []string{".ipynb"}); err != nil {
				return &utils.ValidationError{Field: field + ".target", Message: "notebook steps must target an .ipynb file", Err: err}
			}
		}
		if s.Timeout < 0 {
			return &utils.ValidationError{Field: field + ".timeout", Message: "timeout must not be negative"}
		}
		for j, o := range s.Outputs {
			if err := utils.ValidateRelativePath(fmt.Sprintf("%s.outputs[%d]", field, j), o.Path); err != nil {
				return err
			}
		}
	}

	for i, m := range c.ManualInputs {
		field := fmt.Sprintf("manual_inputs[%d]", i)
		switch m.Kind {
		case ManualFile:
			if err := utils.ValidateRelativePath(field+".path", m.Path); err != nil {
				return err
			}
		case ManualEnv:
			if m.EnvVar == "" {
				return &utils.ValidationError{Field: field + ".env_var", Message: "environment variable name is required"}
			}
		default:
			return &utils.ValidationError{Field: field, Message: fmt.Sprintf("unsupported manual input kind %q", m.Kind)}
		}
	}
	return nil
}
