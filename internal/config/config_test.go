package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LABOURSCAN_DATA_DIR", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5000, cfg.LeadWindow)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Download)
	assert.Equal(t, "Q3 FY26", cfg.Periods.Quarter)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)

	require.NotEmpty(t, cfg.Conglomerates)
	assert.Equal(t, "bajaj auto", cfg.Conglomerates[0].Root)
	assert.Contains(t, cfg.Conglomerates[0].Poison, "finserv")
	assert.Contains(t, cfg.Triggers, "logistics")
	assert.Equal(t, filepath.Join("data", "01_raw"), cfg.RawDir())
}

func TestLoadOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labourscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts: 5\nconglomerates:\n  - root: acme\n    poison: [widgets]\n"), 0o644))

	t.Setenv("LABOURSCAN_DATA_DIR", dir)
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	require.Len(t, cfg.Conglomerates, 1)
	assert.Equal(t, "acme", cfg.Conglomerates[0].Root)
	assert.Equal(t, 5000, cfg.LeadWindow)
}

func TestValidateRejectsZeroAttempts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
