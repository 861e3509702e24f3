package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AnnotationKey is the OCI config.json annotation carrying the healthcheck
// configuration as a JSON-encoded string.
const AnnotationKey = "io.podman.healthcheck"

// ErrDiscoveryMissing means no healthcheck was declared at all: the bundle
// has no config.json, or config.json has no AnnotationKey annotation. This
// is not a failure at the system level — callers should treat it as "run
// without healthchecks", distinct from ErrInvalidConfig ("declared but
// malformed").
var ErrDiscoveryMissing = errors.New("healthcheck: no configuration declared")

// rawConfig mirrors the annotation's JSON shape before validation. Numeric
// fields are pointers so a missing field can be distinguished from an
// explicit zero.
type rawConfig struct {
	Test        []string `json:"test"`
	Interval    *int     `json:"interval"`
	Timeout     *int     `json:"timeout"`
	StartPeriod *int     `json:"start_period"`
	Retries     *int     `json:"retries"`
}

// ParseAnnotation parses the JSON-encoded value of the AnnotationKey
// annotation into a validated, enabled Config. On any failure the returned
// Config is the zero value — a partially built Config is never leaked.
func ParseAnnotation(raw string) (Config, error) {
	var rc rawConfig
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return Config{}, fmt.Errorf("%w: malformed json: %v", ErrInvalidConfig, err)
	}

	argv, err := resolveTestArgv(rc.Test)
	if err != nil {
		return Config{}, err
	}

	if rc.Interval == nil {
		return Config{}, &ValidationError{Field: "interval", Value: nil, Reason: "required"}
	}
	if rc.Timeout == nil {
		return Config{}, &ValidationError{Field: "timeout", Value: nil, Reason: "required"}
	}
	if rc.StartPeriod == nil {
		return Config{}, &ValidationError{Field: "start_period", Value: nil, Reason: "required"}
	}
	if rc.Retries == nil {
		return Config{}, &ValidationError{Field: "retries", Value: nil, Reason: "required"}
	}

	cfg := Config{
		Test:         argv,
		IntervalS:    *rc.Interval,
		TimeoutS:     *rc.Timeout,
		StartPeriodS: *rc.StartPeriod,
		Retries:      *rc.Retries,
		Enabled:      true,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveTestArgv implements the CMD / CMD-SHELL test-array rules and
// returns the resulting probe argv.
func resolveTestArgv(test []string) ([]string, error) {
	if len(test) < 2 {
		return nil, &ValidationError{Field: "test", Value: test, Reason: "must be an array of length >= 2"}
	}

	switch test[0] {
	case "CMD":
		if len(test) < 2 {
			return nil, &ValidationError{Field: "test", Value: test, Reason: "CMD requires at least one argument"}
		}
		argv := make([]string, len(test)-1)
		copy(argv, test[1:])
		return argv, nil

	case "CMD-SHELL":
		if len(test) != 2 {
			return nil, &ValidationError{Field: "test", Value: test, Reason: "CMD-SHELL requires exactly 2 elements"}
		}
		shellCmd := test[1]
		if len(shellCmd) == 0 {
			return nil, &ValidationError{Field: "test[1]", Value: shellCmd, Reason: "CMD-SHELL string must be non-empty"}
		}
		if len(shellCmd) > MaxCmdShellLen {
			return nil, &ValidationError{Field: "test[1]", Value: len(shellCmd),
				Reason: fmt.Sprintf("CMD-SHELL string must be at most %d bytes", MaxCmdShellLen)}
		}
		return []string{"/bin/sh", "-c", shellCmd}, nil

	default:
		return nil, &ValidationError{Field: "test[0]", Value: test[0], Reason: `must be "CMD" or "CMD-SHELL"`}
	}
}

// ociConfig is the minimal shape of config.json this package cares about.
type ociConfig struct {
	Annotations map[string]string `json:"annotations"`
}

// DiscoverFromBundle reads <bundlePath>/config.json, locates the
// AnnotationKey annotation and delegates to ParseAnnotation. Missing file,
// missing annotation and parse failure are distinguished: the first two
// return ErrDiscoveryMissing, the third returns ErrInvalidConfig.
func DiscoverFromBundle(bundlePath string) (Config, error) {
	configPath := filepath.Join(bundlePath, "config.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s not found", ErrDiscoveryMissing, configPath)
		}
		return Config{}, fmt.Errorf("failed to read OCI bundle config: %w", err)
	}

	var oci ociConfig
	if err := json.Unmarshal(data, &oci); err != nil {
		return Config{}, fmt.Errorf("%w: malformed OCI config.json: %v", ErrInvalidConfig, err)
	}

	raw, ok := oci.Annotations[AnnotationKey]
	if !ok || raw == "" {
		return Config{}, fmt.Errorf("%w: annotation %s not present in %s", ErrDiscoveryMissing, AnnotationKey, configPath)
	}

	return ParseAnnotation(raw)
}
