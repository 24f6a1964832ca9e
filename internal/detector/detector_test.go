package detector

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/arch/hc11"
	"github.com/retroenv/tabledisasm/internal/options"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name      string
		archOpt   string
		inputFile string
		wantArch  string
	}{
		{
			name:      "explicit architecture option",
			archOpt:   "HC11",
			inputFile: "rom.bin",
			wantArch:  "hc11",
		},
		{
			name:      "explicit custom architecture",
			archOpt:   "z80",
			inputFile: "rom.hc11",
			wantArch:  "z80",
		},
		{
			name:      "detect from .s11 extension",
			inputFile: "monitor.s11",
			wantArch:  hc11.Name,
		},
		{
			name:      "unknown extension defaults to 68HC11",
			inputFile: "rom.bin",
			wantArch:  hc11.Name,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.inputFile},
				Flags:      options.Flags{Arch: tt.archOpt},
			}

			got := d.Detect(opts)
			assert.Equal(t, tt.wantArch, got)
		})
	}
}

func TestDetectFromFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		filename  string
		wantArch  string
		wantKnown bool
	}{
		{filename: "boot.hc11", wantArch: hc11.Name, wantKnown: true},
		{filename: "BOOT.HC11", wantArch: hc11.Name, wantKnown: true},
		{filename: "boot.6811", wantArch: hc11.Name, wantKnown: true},
		{filename: "monitor.s11", wantArch: hc11.Name, wantKnown: true},
		{filename: "boot", wantArch: hc11.Name, wantKnown: false},
		{filename: "rom.bin", wantArch: hc11.Name, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, known := d.detectFromFile(tt.filename)
			assert.Equal(t, tt.wantArch, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}
