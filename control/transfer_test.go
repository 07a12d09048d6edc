package control

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardnew/softdfu/pkg"
)

func TestInCapacity(t *testing.T) {
	tests := []struct {
		name    string
		wLength uint16
		bufLen  int
		want    int
	}{
		{"buffer limits", 256, 64, 64},
		{"wLength limits", 6, 64, 6},
		{"equal", 128, 128, 128},
		{"zero length", 0, 64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := SetupPacket{Length: tt.wLength}
			tx := NewIn(&setup, make([]byte, tt.bufLen))
			if got := tx.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInAcceptWith(t *testing.T) {
	setup := SetupPacket{Length: 6}
	tx := NewIn(&setup, make([]byte, 8))

	reply := []byte{1, 2, 3, 4, 5, 6}
	if err := tx.AcceptWith(reply); err != nil {
		t.Fatalf("AcceptWith() error = %v", err)
	}
	if !tx.Resolved() || tx.Stalled() {
		t.Error("transfer not resolved as accepted")
	}
	if !bytes.Equal(tx.Data(), reply) {
		t.Errorf("Data() = % X, want % X", tx.Data(), reply)
	}
}

func TestInAcceptWithTooLong(t *testing.T) {
	setup := SetupPacket{Length: 6}
	tx := NewIn(&setup, make([]byte, 8))

	err := tx.AcceptWith(make([]byte, 7))
	if !errors.Is(err, pkg.ErrTransferTooLong) {
		t.Fatalf("AcceptWith(7 bytes) error = %v, want ErrTransferTooLong", err)
	}
	if tx.Resolved() {
		t.Error("oversized accept resolved the transfer")
	}

	// Still usable after the failed attempt.
	if err := tx.AcceptWith(make([]byte, 6)); err != nil {
		t.Errorf("AcceptWith() after failure error = %v", err)
	}
}

func TestInDoubleResolve(t *testing.T) {
	setup := SetupPacket{Length: 1}
	tx := NewIn(&setup, make([]byte, 1))

	if err := tx.AcceptWith([]byte{0x42}); err != nil {
		t.Fatalf("AcceptWith() error = %v", err)
	}
	if err := tx.AcceptWith([]byte{0x43}); !errors.Is(err, pkg.ErrTransferComplete) {
		t.Errorf("second AcceptWith() error = %v, want ErrTransferComplete", err)
	}
	if err := tx.Reject(); !errors.Is(err, pkg.ErrTransferComplete) {
		t.Errorf("Reject() after accept error = %v, want ErrTransferComplete", err)
	}
	if got := tx.Data(); !bytes.Equal(got, []byte{0x42}) {
		t.Errorf("Data() = % X, want 42", got)
	}
}

func TestInReject(t *testing.T) {
	setup := SetupPacket{Length: 6}
	tx := NewIn(&setup, make([]byte, 6))

	if err := tx.Reject(); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if !tx.Resolved() || !tx.Stalled() {
		t.Error("transfer not resolved as stalled")
	}
	if tx.Data() != nil {
		t.Errorf("Data() = % X on stalled transfer, want nil", tx.Data())
	}
}

func TestInEmptyReply(t *testing.T) {
	setup := SetupPacket{Length: 128}
	tx := NewIn(&setup, make([]byte, 128))

	if err := tx.AcceptWith(nil); err != nil {
		t.Fatalf("AcceptWith(nil) error = %v", err)
	}
	if !tx.Resolved() || tx.Stalled() {
		t.Error("empty reply not resolved as accepted")
	}
	if len(tx.Data()) != 0 {
		t.Errorf("Data() len = %d, want 0", len(tx.Data()))
	}
}

func TestOutAcceptReject(t *testing.T) {
	setup := SetupPacket{Length: 3}
	payload := []byte{1, 2, 3}
	tx := NewOut(&setup, payload)

	if !bytes.Equal(tx.Data(), payload) {
		t.Errorf("Data() = % X, want % X", tx.Data(), payload)
	}
	if tx.Resolved() {
		t.Error("fresh transfer already resolved")
	}

	if err := tx.Accept(); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if !tx.Resolved() || tx.Stalled() {
		t.Error("transfer not resolved as accepted")
	}
	if err := tx.Reject(); !errors.Is(err, pkg.ErrTransferComplete) {
		t.Errorf("Reject() after accept error = %v, want ErrTransferComplete", err)
	}

	tx = NewOut(&setup, payload)
	if err := tx.Reject(); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if !tx.Stalled() {
		t.Error("transfer not stalled after reject")
	}
}

func TestTransferSetupCopied(t *testing.T) {
	setup := SetupPacket{Request: 0x03, Length: 6}
	tx := NewIn(&setup, make([]byte, 6))

	// Mutating the caller's packet must not affect the transfer.
	setup.Request = 0xFF
	if got := tx.Setup().Request; got != 0x03 {
		t.Errorf("Setup().Request = 0x%02X, want 0x03", got)
	}
}
