package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("Symbol,Shares\n"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestSweepRemovesExpiredUploads(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := writeFile(t, dir, "old.csv", now.Add(-48*time.Hour))
	fresh := writeFile(t, dir, "fresh.csv", now.Add(-time.Hour))
	other := writeFile(t, dir, "notes.txt", now.Add(-48*time.Hour))

	j := NewUploadJanitor(dir, 24*time.Hour, time.Minute)
	j.now = func() time.Time { return now }

	assert.Equal(t, 1, j.Sweep())
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestSweepMissingDirectory(t *testing.T) {
	j := NewUploadJanitor(filepath.Join(t.TempDir(), "absent"), time.Hour, time.Minute)
	assert.Equal(t, 0, j.Sweep())
}

func TestSweepDisabledWithoutRetention(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.csv", time.Now().Add(-1000*time.Hour))

	j := NewUploadJanitor(dir, 0, time.Minute)
	assert.Equal(t, 0, j.Sweep())
	assert.FileExists(t, path)
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.csv", time.Now().Add(-48*time.Hour))

	j := NewUploadJanitor(dir, time.Hour, time.Hour)
	done := make(chan struct{})
	go func() {
		j.Start()
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	j.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
