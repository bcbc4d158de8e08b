package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: sqlite\n  dsn: \"file::memory:\"\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "everyone", cfg.Notify.GlobalAudience)
	assert.Equal(t, "members", cfg.Notify.MentionAudience)
	assert.Equal(t, 5, cfg.Feed.SearchLimit)
	assert.Equal(t, "system", cfg.Feed.SystemUsername)
	assert.False(t, cfg.Push.Enabled())
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoadFile_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notify:\n  workers: 2\n"), 0o600))

	t.Setenv("GROUPFEED_NOTIFY_WORKERS", "9")
	t.Setenv("GROUPFEED_MAIL_HOST", "smtp.example.org")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Notify.Workers)
	assert.True(t, cfg.Mail.Enabled())
}

func TestLoadFile_RejectsUnknownAudience(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notify:\n  global_audience: admins\n"), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_RejectsUnknownMentionAudience(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notify:\n  mention_audience: friends\n"), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
