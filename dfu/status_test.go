package dfu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardnew/softdfu/pkg"
)

func TestStatusRecordMarshalTo(t *testing.T) {
	tests := []struct {
		name string
		rec  StatusRecord
		want []byte
	}{
		{
			name: "idle",
			rec:  newStatusRecord(0x08000000),
			want: []byte{0x00, 0x00, 0x00, 0x00, 0x02, 0x00},
		},
		{
			name: "busy with 24-bit timeout",
			rec: StatusRecord{
				status:      StatusOK,
				pollTimeout: 0x20304,
				state:       StateDfuDnBusy,
			},
			want: []byte{0x00, 0x04, 0x03, 0x02, 0x04, 0x00},
		},
		{
			name: "error",
			rec: StatusRecord{
				status: StatusErrVerify,
				state:  StateDfuError,
			},
			want: []byte{0x07, 0x00, 0x00, 0x00, 0x0A, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf [GetStatusLength]byte
			if n := tt.rec.MarshalTo(buf[:]); n != GetStatusLength {
				t.Fatalf("MarshalTo() = %d, want %d", n, GetStatusLength)
			}
			if !bytes.Equal(buf[:], tt.want) {
				t.Errorf("MarshalTo() wrote % X, want % X", buf, tt.want)
			}
		})
	}
}

func TestStatusRecordMarshalToShortBuffer(t *testing.T) {
	rec := newStatusRecord(0)
	for size := 0; size < GetStatusLength; size++ {
		if n := rec.MarshalTo(make([]byte, size)); n != 0 {
			t.Errorf("MarshalTo(len %d) = %d, want 0", size, n)
		}
	}
}

func TestStatusRecordPromote(t *testing.T) {
	rec := newStatusRecord(0)
	rec.command = command{kind: cmdWriteMemory, blockNum: 3, length: 128}

	rec.promote()

	if rec.command.isWork() {
		t.Error("command slot still populated after promote")
	}
	want := command{kind: cmdWriteMemory, blockNum: 3, length: 128}
	if rec.pending != want {
		t.Errorf("pending = %+v, want %+v", rec.pending, want)
	}
}

func TestStatusRecordClearCommands(t *testing.T) {
	rec := newStatusRecord(0)
	rec.command = command{kind: cmdEraseAll}
	rec.pending = command{kind: cmdSetAddressPointer, addr: 0x20000000}

	rec.clearCommands()

	if rec.command.isWork() || rec.pending.isWork() {
		t.Errorf("slots not empty: command %v, pending %v",
			rec.command.kind, rec.pending.kind)
	}
}

func TestStatusRecordSetState(t *testing.T) {
	rec := newStatusRecord(0)

	rec.setStateStatus(StateDfuError, StatusErrAddress)
	if rec.State() != StateDfuError || rec.Code() != StatusErrAddress {
		t.Errorf("got %s/%s, want %s/%s",
			rec.State(), rec.Code(), StateDfuError, StatusErrAddress)
	}

	rec.setStateOK(StateDfuIdle)
	if rec.State() != StateDfuIdle || rec.Code() != StatusOK {
		t.Errorf("got %s/%s, want %s/%s",
			rec.State(), rec.Code(), StateDfuIdle, StatusOK)
	}
}

func TestCheckedAdd(t *testing.T) {
	tests := []struct {
		a, b    uint32
		want    uint32
		wantErr bool
	}{
		{0, 0, 0, false},
		{0x08000000, 0x80, 0x08000080, false},
		{0xFFFFFFFF, 0, 0xFFFFFFFF, false},
		{0xFFFFFFF0, 0x0F, 0xFFFFFFFF, false},
		{0xFFFFFFF0, 0x10, 0, true},
		{0xFFFFFFFF, 1, 0, true},
		{0x80000000, 0x80000000, 0, true},
	}

	for _, tt := range tests {
		got, err := checkedAdd(tt.a, tt.b)
		if tt.wantErr {
			if !errors.Is(err, pkg.ErrOutOfRange) {
				t.Errorf("checkedAdd(0x%X, 0x%X) error = %v, want ErrOutOfRange",
					tt.a, tt.b, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("checkedAdd(0x%X, 0x%X) error = %v", tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("checkedAdd(0x%X, 0x%X) = 0x%X, want 0x%X",
				tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCommandKindString(t *testing.T) {
	kinds := map[commandKind]string{
		cmdNone:              "none",
		cmdEraseAll:          "erase-all",
		cmdEraseBlock:        "erase-block",
		cmdSetAddressPointer: "set-address-pointer",
		cmdReadUnprotect:     "read-unprotect",
		cmdWriteMemory:       "write-memory",
		cmdLeaveDFU:          "leave-dfu",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("commandKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
