package dfu

import (
	"fmt"
	"testing"

	"github.com/ardnew/softdfu/control"
)

// TestStateOperationMatrix exercises every request in every protocol
// state and checks the accept/stall outcome and the resulting state and
// status. Each cell starts from a fresh engine with the state forced,
// so the table reflects the transition rules alone.
func TestStateOperationMatrix(t *testing.T) {
	states := []State{
		StateAppIdle, StateAppDetach, StateDfuIdle,
		StateDfuDnloadSync, StateDfuDnBusy, StateDfuDnloadIdle,
		StateDfuManifestSync, StateDfuManifest, StateDfuManifestWaitReset,
		StateDfuUploadIdle, StateDfuError,
	}

	type want struct {
		accept bool
		state  State
		status Status
	}

	stalled := want{false, StateDfuError, StatusErrStalledPkt}

	ops := []struct {
		name string
		run  func(t *testing.T, d *DFU) bool
		want func(s State) want
	}{
		{
			name: "DNLOAD",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				DownloadSetup(&setup, 0, 2, 128)
				tx := control.NewOut(&setup, make([]byte, 128))
				if !d.ControlOut(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				switch s {
				case StateDfuIdle, StateDfuDnloadIdle:
					return want{true, StateDfuDnloadSync, StatusOK}
				}
				return stalled
			},
		},
		{
			name: "UPLOAD",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				UploadSetup(&setup, 0, 2, 128)
				tx := control.NewIn(&setup, make([]byte, 128))
				if !d.ControlIn(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				switch s {
				case StateDfuIdle, StateDfuUploadIdle:
					return want{true, StateDfuUploadIdle, StatusOK}
				}
				return stalled
			},
		},
		{
			name: "GETSTATUS",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				GetStatusSetup(&setup, 0)
				tx := control.NewIn(&setup, make([]byte, GetStatusLength))
				if !d.ControlIn(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				// With an empty command slot the only status-poll
				// transition is leaving the sync state.
				next := s
				if s == StateDfuDnloadSync {
					next = StateDfuDnloadIdle
				}
				return want{true, next, StatusOK}
			},
		},
		{
			name: "GETSTATE",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				GetStateSetup(&setup, 0)
				tx := control.NewIn(&setup, make([]byte, 1))
				if !d.ControlIn(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				return want{true, s, StatusOK}
			},
		},
		{
			name: "CLRSTATUS",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				ClearStatusSetup(&setup, 0)
				tx := control.NewOut(&setup, nil)
				if !d.ControlOut(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				if s == StateDfuError {
					return want{true, StateDfuIdle, StatusOK}
				}
				return stalled
			},
		},
		{
			name: "ABORT",
			run: func(t *testing.T, d *DFU) bool {
				var setup control.SetupPacket
				AbortSetup(&setup, 0)
				tx := control.NewOut(&setup, nil)
				if !d.ControlOut(tx) {
					t.Fatal("request not claimed")
				}
				return !tx.Stalled()
			},
			want: func(s State) want {
				switch s {
				case StateDfuIdle, StateDfuUploadIdle, StateDfuDnloadIdle,
					StateDfuDnloadSync, StateDfuManifestSync:
					return want{true, StateDfuIdle, StatusOK}
				}
				// Stalled without entering the error state.
				return want{false, s, StatusOK}
			},
		},
	}

	for _, op := range ops {
		for _, s := range states {
			t.Run(fmt.Sprintf("%s in %s", op.name, s), func(t *testing.T) {
				d, err := New(testConfig(), newTestMem(), 0)
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}
				d.status.state = s

				accepted := op.run(t, d)
				w := op.want(s)
				if accepted != w.accept {
					t.Errorf("accepted = %t, want %t", accepted, w.accept)
				}
				if got := d.State(); got != w.state {
					t.Errorf("State() = %s, want %s", got, w.state)
				}
				if got := d.StatusCode(); got != w.status {
					t.Errorf("StatusCode() = %s, want %s", got, w.status)
				}
			})
		}
	}
}
