// Package config holds the front end settings read from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Standard string

const (
	C89  Standard = "c89"
	C99  Standard = "c99"
	CC65 Standard = "cc65"
	C23  Standard = "c23"
)

// AtLeastC99 reports whether implicit int is deprecated.
func (s Standard) AtLeastC99() bool {
	return s == C99 || s == C23
}

type MemoryModel string

const (
	Near MemoryModel = "near"
	Far  MemoryModel = "far"
)

type Warnings struct {
	ImplicitInt bool `yaml:"implicit_int"`
	StructParam bool `yaml:"struct_param"`
	UselessDecl bool `yaml:"useless_decl"`
}

type Config struct {
	Standard    Standard    `yaml:"standard"`
	MemoryModel MemoryModel `yaml:"memory_model"`
	// MaxErrors stops the parse after this many errors, 0 means no limit.
	MaxErrors int      `yaml:"max_errors"`
	Warnings  Warnings `yaml:"warnings"`
}

func Default() *Config {
	return &Config{
		Standard:    CC65,
		MemoryModel: Near,
		MaxErrors:   0,
		Warnings: Warnings{
			ImplicitInt: true,
			StructParam: false,
			UselessDecl: true,
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Standard {
	case C89, C99, CC65, C23:
	default:
		return errors.Errorf("unknown standard %q", c.Standard)
	}
	switch c.MemoryModel {
	case Near, Far:
	default:
		return errors.Errorf("unknown memory model %q", c.MemoryModel)
	}
	if c.MaxErrors < 0 {
		return errors.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	return nil
}

// Parse reads YAML on top of the defaults. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}
