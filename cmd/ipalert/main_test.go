package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipalert/internal/alert"
	"ipalert/internal/config"
	"ipalert/internal/history"
	"ipalert/internal/models"
)

func TestRootMissingConfigFails(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-C", filepath.Join(dir, "missing.json"), "-R", filepath.Join(dir, "record.json")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)

	_, statErr := os.Stat(filepath.Join(dir, "record.json"))
	assert.True(t, os.IsNotExist(statErr), "no record may be written without configuration")
}

func TestHistoryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := history.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveObservation(models.ObservationEntry{
		RunID: "r1", ObservedAt: time.Now(), Hostname: "nas", IP: "10.0.0.2", PreviousIP: "10.0.0.1", Changed: true,
	}))
	require.NoError(t, db.Close())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"history", "--db", path})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "HOSTNAME")
	assert.Contains(t, out.String(), "10.0.0.2")
	assert.Contains(t, out.String(), "10.0.0.1")
}

func TestResolveHistoryPathNotConfigured(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
  "smtp": {"host": "smtp.example.com"},
  "mail": {"sender": "a@example.com", "receivers": ["b@example.com"]}
}`), 0o600))

	_, err := resolveHistoryPath("", cfgPath)
	assert.Error(t, err)

	got, err := resolveHistoryPath("/tmp/h.db", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", got)
}

func TestPrintStatus(t *testing.T) {
	res := alert.Result{
		Observation: models.Observation{
			Current: models.HostRecord{Hostname: "nas", IP: "10.0.0.2", Timestamp: time.Now()},
			Changed: true,
		},
		Notified: true,
	}

	var out bytes.Buffer
	printStatus(&out, res, []string{"ops@example.com"})

	assert.Contains(t, out.String(), "nas\t10.0.0.2\t")
	assert.Contains(t, out.String(), "The IP is changed.")
	assert.Contains(t, out.String(), "An alert mail has been sent to [ops@example.com].")

	out.Reset()
	printStatus(&out, alert.Result{}, nil)
	assert.Empty(t, out.String())
}
