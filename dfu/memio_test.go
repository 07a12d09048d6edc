package dfu

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestMemStatus(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{MemErrTarget, StatusErrTarget},
		{MemErrFile, StatusErrFile},
		{MemErrWrite, StatusErrWrite},
		{MemErrErase, StatusErrErase},
		{MemErrCheckErased, StatusErrCheckErased},
		{MemErrProg, StatusErrProg},
		{MemErrVerify, StatusErrVerify},
		{MemErrAddress, StatusErrAddress},
		{MemErrVendor, StatusErrVendor},
		{MemErrUnknown, StatusErrUnknown},
		{fmt.Errorf("page 3: %w", MemErrProg), StatusErrProg},
		{errors.New("i/o timeout"), StatusErrUnknown},
		{MemError(0x7F), StatusErrUnknown},
	}
	for _, tt := range tests {
		if got := memStatus(tt.err); got != tt.want {
			t.Errorf("memStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestManifestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{ManifestErrTarget, StatusErrTarget},
		{ManifestErrFile, StatusErrFile},
		{ManifestErrNotDone, StatusErrNotDone},
		{ManifestErrFirmware, StatusErrFirmware},
		{ManifestErrVendor, StatusErrVendor},
		{ManifestErrUnknown, StatusErrUnknown},
		{fmt.Errorf("checksum: %w", ManifestErrFirmware), StatusErrFirmware},
		{errors.New("i/o timeout"), StatusErrUnknown},
	}
	for _, tt := range tests {
		if got := manifestStatus(tt.err); got != tt.want {
			t.Errorf("manifestStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMemErrorMessage(t *testing.T) {
	if got := MemErrVerify.Error(); !strings.Contains(got, "errVERIFY") {
		t.Errorf("MemErrVerify.Error() = %q, want errVERIFY mention", got)
	}
	if got := ManifestErrNotDone.Error(); !strings.Contains(got, "errNOTDONE") {
		t.Errorf("ManifestErrNotDone.Error() = %q, want errNOTDONE mention", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.ManifestationTime != DefaultManifestationTime {
		t.Errorf("ManifestationTime = %v, want %v",
			cfg.ManifestationTime, DefaultManifestationTime)
	}
	if cfg.DetachTimeout != DefaultDetachTimeout {
		t.Errorf("DetachTimeout = %v, want %v",
			cfg.DetachTimeout, DefaultDetachTimeout)
	}
	if cfg.TransferSize != DefaultTransferSize {
		t.Errorf("TransferSize = %d, want %d",
			cfg.TransferSize, DefaultTransferSize)
	}

	// Explicit values survive.
	cfg = Config{
		ManifestationTime: 5 * time.Millisecond,
		TransferSize:      1024,
	}.withDefaults()
	if cfg.ManifestationTime != 5*time.Millisecond {
		t.Errorf("ManifestationTime = %v, want 5ms", cfg.ManifestationTime)
	}
	if cfg.TransferSize != 1024 {
		t.Errorf("TransferSize = %d, want 1024", cfg.TransferSize)
	}
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Config{}, nil, 0); err == nil {
		t.Fatal("New(nil backend) error = nil, want error")
	}
}
