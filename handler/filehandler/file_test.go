package filehandler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/formatter"
)

func handleMsg(t *testing.T, h *FileHandler, msg string) {
	t.Helper()
	entry := core.GetEntry()
	entry.Level = core.InfoLevel
	entry.Message = msg
	require.NoError(t, h.Handle(entry))
	core.PutEntry(entry)
}

func TestNewFileHandler_RequiresFilename(t *testing.T) {
	_, err := NewFileHandler(FileConfig{})
	assert.Error(t, err)
}

func TestFileHandler_MaxBackups(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:   filename,
		MaxSize:    100, // Small size to trigger rotation
		MaxBackups: 2,   // Keep only 2 backups
	})
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 100; i++ {
		handleMsg(t, h, "This is a test message that will trigger rotation")
	}

	assert.LessOrEqual(t, len(h.backups()), 2)
	assert.NotEmpty(t, h.backups())
}

func TestFileHandler_RotateInterval(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:       filename,
		RotateInterval: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer h.Close()

	handleMsg(t, h, "first")
	time.Sleep(80 * time.Millisecond)
	handleMsg(t, h, "second")

	backups := h.backups()
	require.Len(t, backups, 1)
	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
}

func TestFileHandler_FlushMakesDataVisible(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.log")

	h, err := NewFileHandler(FileConfig{Filename: filename})
	require.NoError(t, err)
	defer h.Close()

	rec := core.Record{Time: time.Now(), Level: core.InfoLevel, Message: "buffered"}
	require.NoError(t, h.HandleLog(&rec))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "buffered")

	require.NoError(t, h.Flush())
	data, err = os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffered")
}

func TestFileHandler_ImmediateFlush(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:       filename,
		Formatter:      formatter.NewJSONFormatter(formatter.Config{}),
		ImmediateFlush: true,
	})
	require.NoError(t, err)
	defer h.Close()

	handleMsg(t, h, "now")

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"now"`)
}

func TestFileHandler_CloseSyncsAndRejectsWrites(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.log")

	h, err := NewFileHandler(FileConfig{Filename: filename})
	require.NoError(t, err)

	handleMsg(t, h, "test")
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "test"))

	rec := core.Record{Level: core.InfoLevel, Message: "late"}
	assert.ErrorIs(t, h.HandleLog(&rec), ErrClosed)
	assert.NoError(t, h.Flush())
}
