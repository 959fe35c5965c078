package multihandler

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler/consolehandler"
)

// plainHandler implements only handler.Handler, forcing the mixed path.
type plainHandler struct {
	msgs    []string
	err     error
	flushed int
	closed  bool
}

func (p *plainHandler) Handle(entry *core.Entry) error {
	p.msgs = append(p.msgs, entry.Message)
	return p.err
}

func (p *plainHandler) Flush() error {
	p.flushed++
	return nil
}

func (p *plainHandler) Close() error {
	p.closed = true
	return p.err
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer

	h1 := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf1,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	h2 := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf2,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	multi := NewMultiHandler(h1, h2)
	defer multi.Close()
	assert.True(t, multi.allFast)

	entry := core.GetEntry()
	entry.Level = core.InfoLevel
	entry.Message = "multi test"

	require.NoError(t, multi.Handle(entry))
	assert.Contains(t, buf1.String(), "multi test")
	assert.Contains(t, buf2.String(), "multi test")

	rec := core.Record{Level: core.InfoLevel, Message: "fast path"}
	require.NoError(t, multi.HandleLog(&rec))
	assert.Contains(t, buf1.String(), "fast path")
	assert.Contains(t, buf2.String(), "fast path")
}

func TestMultiHandler_MixedChildrenAndErrors(t *testing.T) {
	var buf bytes.Buffer
	fast := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{Writer: &buf})
	bad := &plainHandler{err: errors.New("broken")}
	good := &plainHandler{}

	multi := NewMultiHandler(fast, bad, good)
	assert.False(t, multi.allFast)

	rec := core.Record{Level: core.WarnLevel, Message: "mixed"}
	err := multi.HandleLog(&rec)
	assert.EqualError(t, err, "broken")

	assert.Contains(t, buf.String(), "mixed")
	assert.Equal(t, []string{"mixed"}, bad.msgs)
	assert.Equal(t, []string{"mixed"}, good.msgs)

	require.NoError(t, multi.Flush())
	assert.Equal(t, 1, bad.flushed)
	assert.Equal(t, 1, good.flushed)

	err = multi.Close()
	assert.Len(t, multierr.Errors(err), 1)
	assert.True(t, bad.closed)
	assert.True(t, good.closed)
}
