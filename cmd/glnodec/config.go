package main

import (
	"fmt"
	"os"

	"github.com/soypat/glnode"
	"github.com/soypat/glnode/glbuild"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML representation of [glbuild.Config]. Zero fields keep defaults.
//
//	language: wgsl
//	version: 300 es
//	precision: mediump
//	workgroupSize: 64
//	attributes:
//	  position: vec3
//	  color: vec4
type fileConfig struct {
	Language       string            `yaml:"language"`
	Version        string            `yaml:"version"`
	ComputeVersion string            `yaml:"computeVersion"`
	Precision      string            `yaml:"precision"`
	WorkgroupSize  int               `yaml:"workgroupSize"`
	Attributes     map[string]string `yaml:"attributes"`
}

func loadConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

// builderConfig returns the builder configuration of fc. A non-empty lang overrides the file's language.
func (fc fileConfig) builderConfig(lang string) (glbuild.Config, error) {
	if lang == "" {
		lang = fc.Language
	}
	language := glbuild.GLSL
	if lang != "" {
		var err error
		language, err = glbuild.ParseLanguage(lang)
		if err != nil {
			return glbuild.Config{}, err
		}
	}
	cfg := glbuild.DefaultConfig(language)
	if fc.Version != "" {
		cfg.Version = fc.Version
	}
	if fc.ComputeVersion != "" {
		cfg.ComputeVersion = fc.ComputeVersion
	}
	if fc.Precision != "" {
		cfg.Precision = fc.Precision
	}
	if fc.WorkgroupSize != 0 {
		cfg.WorkgroupSize = fc.WorkgroupSize
	}
	if len(fc.Attributes) > 0 {
		cfg.Attributes = make(map[string]glnode.Type, len(fc.Attributes))
		for name, typ := range fc.Attributes {
			t, err := glnode.ParseType(typ)
			if err != nil {
				return cfg, fmt.Errorf("attribute %s: %w", name, err)
			}
			cfg.Attributes[name] = t
		}
	}
	return cfg, cfg.Validate()
}
