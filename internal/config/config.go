// Package config loads configuration from environment variables.
package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

// Environment variable names. ACCESS_CONTROL_ALOOW_ORIGIN keeps the spelling
// used by existing deployments.
const (
	EnvRegion      = "AWS_REGION"
	EnvBucket      = "S3_BUCKET_NAME"
	EnvTable       = "DYNAMODB_TABLE_NAME"
	EnvAllowOrigin = "ACCESS_CONTROL_ALOOW_ORIGIN"
	EnvEndpointURL = "AWS_ENDPOINT_URL"
	EnvLogLevel    = "LOG_LEVEL"
)

// Configuration errors reported by the Check methods.
var (
	ErrMissingRegion = errors.New("config: region is not set or not resolvable")
	ErrMissingBucket = errors.New("config: " + EnvBucket + " is not set")
	ErrMissingTable  = errors.New("config: " + EnvTable + " is not set")
)

var regionRx = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]?)?-[a-z]+-\d{1,2}$`)

// Env holds the configuration values for the application.
type Env struct {
	Region      string
	Bucket      string
	Table       string
	AllowOrigin string
	EndpointURL string
	LogLevel    string

	// Static credentials, only set from a config file for local endpoints.
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads the environment once. Missing values are not fatal here; each
// operation checks what it needs before touching a store.
func Load() Env {
	return Env{
		Region:      get(EnvRegion, ""),
		Bucket:      get(EnvBucket, ""),
		Table:       get(EnvTable, ""),
		AllowOrigin: get(EnvAllowOrigin, ""),
		EndpointURL: get(EnvEndpointURL, ""),
		LogLevel:    get(EnvLogLevel, "info"),
	}
}

// RegionOK reports whether Region names an AWS region.
func (e Env) RegionOK() bool {
	return regionRx.MatchString(e.Region)
}

// CheckBlob validates the settings every blob operation depends on.
func (e Env) CheckBlob() error {
	if !e.RegionOK() {
		return ErrMissingRegion
	}
	if e.Bucket == "" {
		return ErrMissingBucket
	}
	return nil
}

// CheckRecord validates the settings every record operation depends on.
func (e Env) CheckRecord() error {
	if !e.RegionOK() {
		return ErrMissingRegion
	}
	if e.Table == "" {
		return ErrMissingTable
	}
	return nil
}

// get returns the trimmed value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
