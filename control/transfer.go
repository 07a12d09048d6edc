package control

import "github.com/ardnew/softdfu/pkg"

// transferState tracks whether a transfer has been resolved.
type transferState uint8

const (
	transferPending transferState = iota
	transferAccepted
	transferRejected
)

// In represents the data stage of a device-to-host control transfer.
//
// The transport creates it with a staging buffer for the reply; the class
// driver resolves it with AcceptWith or Reject. The usable reply capacity
// is bounded by both the buffer and the host's wLength.
type In struct {
	setup SetupPacket
	buf   []byte
	n     int
	state transferState
}

// NewIn creates an IN transfer for setup, staging the reply in buf.
func NewIn(setup *SetupPacket, buf []byte) *In {
	return &In{setup: *setup, buf: buf}
}

// Setup returns the SETUP packet that initiated the transfer.
func (t *In) Setup() *SetupPacket {
	return &t.setup
}

// Capacity returns the maximum reply length in bytes.
func (t *In) Capacity() int {
	if int(t.setup.Length) < len(t.buf) {
		return int(t.setup.Length)
	}
	return len(t.buf)
}

// AcceptWith resolves the transfer successfully with the given reply data.
// Data exceeding Capacity is an error and leaves the transfer unresolved.
func (t *In) AcceptWith(data []byte) error {
	if t.state != transferPending {
		return pkg.ErrTransferComplete
	}
	if len(data) > t.Capacity() {
		return pkg.ErrTransferTooLong
	}
	copy(t.buf, data)
	t.n = len(data)
	t.state = transferAccepted
	return nil
}

// Reject resolves the transfer by stalling the control pipe.
func (t *In) Reject() error {
	if t.state != transferPending {
		return pkg.ErrTransferComplete
	}
	t.state = transferRejected
	return nil
}

// Resolved returns true once the transfer has been accepted or rejected.
func (t *In) Resolved() bool {
	return t.state != transferPending
}

// Stalled returns true if the transfer was rejected.
func (t *In) Stalled() bool {
	return t.state == transferRejected
}

// Data returns the reply bytes of an accepted transfer.
func (t *In) Data() []byte {
	if t.state != transferAccepted {
		return nil
	}
	return t.buf[:t.n]
}

// Out represents the data stage of a host-to-device control transfer.
//
// The transport fills it with the received payload; the class driver
// resolves it with Accept or Reject.
type Out struct {
	setup SetupPacket
	data  []byte
	state transferState
}

// NewOut creates an OUT transfer for setup carrying the received payload.
func NewOut(setup *SetupPacket, data []byte) *Out {
	return &Out{setup: *setup, data: data}
}

// Setup returns the SETUP packet that initiated the transfer.
func (t *Out) Setup() *SetupPacket {
	return &t.setup
}

// Data returns the payload received from the host.
func (t *Out) Data() []byte {
	return t.data
}

// Accept resolves the transfer successfully.
func (t *Out) Accept() error {
	if t.state != transferPending {
		return pkg.ErrTransferComplete
	}
	t.state = transferAccepted
	return nil
}

// Reject resolves the transfer by stalling the control pipe.
func (t *Out) Reject() error {
	if t.state != transferPending {
		return pkg.ErrTransferComplete
	}
	t.state = transferRejected
	return nil
}

// Resolved returns true once the transfer has been accepted or rejected.
func (t *Out) Resolved() bool {
	return t.state != transferPending
}

// Stalled returns true if the transfer was rejected.
func (t *Out) Stalled() bool {
	return t.state == transferRejected
}
