package health

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func annotationJSON(t *testing.T, test []string, interval, timeout, startPeriod, retries *int) string {
	t.Helper()
	rc := rawConfig{Test: test, Interval: interval, Timeout: timeout, StartPeriod: startPeriod, Retries: retries}
	b, err := json.Marshal(rc)
	require.NoError(t, err)
	return string(b)
}

func TestParseAnnotation_CMD(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD", "curl", "-f", "http://localhost/health"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	cfg, err := ParseAnnotation(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"curl", "-f", "http://localhost/health"}, cfg.Test)
	assert.Equal(t, 10, cfg.IntervalS)
	assert.True(t, cfg.Enabled)
}

func TestParseAnnotation_CMDShell(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD-SHELL", "curl -f http://localhost/health || exit 1"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	cfg, err := ParseAnnotation(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"/bin/sh", "-c", "curl -f http://localhost/health || exit 1"}, cfg.Test)
}

func TestParseAnnotation_CMDShellLengthBoundary(t *testing.T) {
	at := strings.Repeat("a", MaxCmdShellLen)
	raw := annotationJSON(t, []string{"CMD-SHELL", at}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.NoError(t, err)

	over := strings.Repeat("a", MaxCmdShellLen+1)
	raw = annotationJSON(t, []string{"CMD-SHELL", over}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err = ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_CMDShellEmptyRejected(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD-SHELL", ""}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_CMDShellWrongArity(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD-SHELL", "a", "b"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_CMDOnlyTagNoArgs(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_UnknownTagRejected(t *testing.T) {
	raw := annotationJSON(t, []string{"NONE", "true"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_MissingRequiredNumericFields(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD", "true"}, nil, intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_MalformedJSON(t *testing.T) {
	_, err := ParseAnnotation("{not json")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseAnnotation_OutOfBoundsPropagatesValidation(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD", "true"}, intPtr(MaxIntervalS+1), intPtr(5), intPtr(0), intPtr(3))
	_, err := ParseAnnotation(raw)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "interval_s", ve.Field)
}

func writeBundle(t *testing.T, annotationValue *string) string {
	t.Helper()
	dir := t.TempDir()
	oci := map[string]any{}
	if annotationValue != nil {
		oci["annotations"] = map[string]string{AnnotationKey: *annotationValue}
	}
	b, err := json.Marshal(oci)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), b, 0o644))
	return dir
}

func TestDiscoverFromBundle_Success(t *testing.T) {
	raw := annotationJSON(t, []string{"CMD", "true"}, intPtr(10), intPtr(5), intPtr(0), intPtr(3))
	dir := writeBundle(t, &raw)

	cfg, err := DiscoverFromBundle(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
}

func TestDiscoverFromBundle_NoConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := DiscoverFromBundle(dir)
	assert.ErrorIs(t, err, ErrDiscoveryMissing)
}

func TestDiscoverFromBundle_NoAnnotation(t *testing.T) {
	dir := writeBundle(t, nil)
	_, err := DiscoverFromBundle(dir)
	assert.ErrorIs(t, err, ErrDiscoveryMissing)
}

func TestDiscoverFromBundle_EmptyAnnotationValue(t *testing.T) {
	empty := ""
	dir := writeBundle(t, &empty)
	_, err := DiscoverFromBundle(dir)
	assert.ErrorIs(t, err, ErrDiscoveryMissing)
}

func TestDiscoverFromBundle_MalformedAnnotationPropagatesInvalidConfig(t *testing.T) {
	bad := "not json at all"
	dir := writeBundle(t, &bad)
	_, err := DiscoverFromBundle(dir)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDiscoverFromBundle_MalformedOCIConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{bad"), 0o644))
	_, err := DiscoverFromBundle(dir)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
