package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML file read by invoicectl. Empty fields leave
// the environment value in place.
type FileConfig struct {
	Listen      string `yaml:"listen"`
	Region      string `yaml:"region"`
	Bucket      string `yaml:"bucket"`
	Table       string `yaml:"table"`
	AllowOrigin string `yaml:"allow_origin"`
	EndpointURL string `yaml:"endpoint_url"`
	LogLevel    string `yaml:"log_level"`
	Credentials struct {
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
	} `yaml:"credentials"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fc, nil
}

// Overlay returns a copy of e with every non-empty field of fc applied.
func (e Env) Overlay(fc FileConfig) Env {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&e.Region, fc.Region)
	set(&e.Bucket, fc.Bucket)
	set(&e.Table, fc.Table)
	set(&e.AllowOrigin, fc.AllowOrigin)
	set(&e.EndpointURL, fc.EndpointURL)
	set(&e.LogLevel, fc.LogLevel)
	set(&e.AccessKeyID, fc.Credentials.AccessKeyID)
	set(&e.SecretAccessKey, fc.Credentials.SecretAccessKey)
	return e
}
