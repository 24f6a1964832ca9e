package fileprocessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/options"
)

func TestProcessFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "boot.hc11")
	code := []byte{0x01, 0x02, 0x10, 0x20, 0x18, 0x3a}
	assert.NoError(t, os.WriteFile(input, code, 0600))

	opts := options.Program{
		Parameters: options.Parameters{
			Input:  input,
			Output: GenerateOutputFilename(input),
		},
		Flags: options.Flags{
			Base:          "$8000",
			ModeTemplates: map[string]string{"indirecty": "(${0:02X}),Y"},
			AssembleTest:  true,
			Quiet:         true,
		},
	}

	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	output, err := os.ReadFile(filepath.Join(dir, "boot.asm"))
	assert.NoError(t, err)
	assert.Contains(t, string(output), ".org $8000\n")
	assert.Contains(t, string(output), "8000  01              nop\n")
	assert.Contains(t, string(output), "8001  02 10 20        ora    $1020\n")
	assert.Contains(t, string(output), "8004  18 3A           aby\n")
}

func TestGetFilesToProcess(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.hc11", "b.hc11", "c.txt"} {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{0x01}, 0600))
	}

	opts := &options.Program{Parameters: options.Parameters{Input: "single.bin"}}
	files, err := GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{"single.bin"}, files)

	opts = &options.Program{Parameters: options.Parameters{Batch: filepath.Join(dir, "*.hc11")}}
	files, err = GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Len(t, files, 2)

	opts = &options.Program{Parameters: options.Parameters{Batch: filepath.Join(dir, "*.none")}}
	_, err = GetFilesToProcess(opts)
	assert.Error(t, err)
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, "rom.asm", GenerateOutputFilename("rom.bin"))
	assert.Equal(t, "dir/boot.asm", GenerateOutputFilename("dir/boot.hc11"))
	assert.Equal(t, "noext.asm", GenerateOutputFilename("noext"))
}

type failingCloser struct {
	err error
}

func (c failingCloser) Close() error {
	return c.err
}

func TestCloseOutput(t *testing.T) {
	errClose := errors.New("disk full")

	var err error
	closeOutput(failingCloser{err: errClose}, &err)
	assert.True(t, errors.Is(err, errClose))

	errEarlier := errors.New("decoding failed")
	err = errEarlier
	closeOutput(failingCloser{err: errClose}, &err)
	assert.True(t, errors.Is(err, errEarlier))
	assert.False(t, errors.Is(err, errClose))

	err = nil
	closeOutput(failingCloser{}, &err)
	assert.NoError(t, err)
}

func TestProcessFile_OutputDirectoryMissing(t *testing.T) {
	logger := log.NewTestLogger(t)

	opts := options.Program{
		Parameters: options.Parameters{
			Input:  "boot.hc11",
			Output: filepath.Join(t.TempDir(), "missing", "boot.asm"),
		},
		Flags: options.Flags{Quiet: true},
	}
	assert.Error(t, ProcessFile(context.Background(), logger, opts))
}
