package dfu

import "github.com/ardnew/softdfu/pkg"

// commandKind tags the Command union.
type commandKind uint8

const (
	cmdNone commandKind = iota
	cmdEraseAll
	cmdEraseBlock
	cmdSetAddressPointer
	cmdReadUnprotect
	cmdWriteMemory
	cmdLeaveDFU
)

// String returns the command name for logging.
func (k commandKind) String() string {
	switch k {
	case cmdNone:
		return "none"
	case cmdEraseAll:
		return "erase-all"
	case cmdEraseBlock:
		return "erase-block"
	case cmdSetAddressPointer:
		return "set-address-pointer"
	case cmdReadUnprotect:
		return "read-unprotect"
	case cmdWriteMemory:
		return "write-memory"
	case cmdLeaveDFU:
		return "leave-dfu"
	default:
		return "invalid"
	}
}

// command is a tagged union of the deferrable download operations.
// Only the fields relevant to the kind are meaningful.
type command struct {
	kind     commandKind
	addr     uint32 // cmdEraseBlock, cmdSetAddressPointer
	blockNum uint16 // cmdWriteMemory
	length   uint16 // cmdWriteMemory
}

// isWork reports whether the command is a unit of work for the deferred
// executor (as opposed to cmdNone).
func (c command) isWork() bool {
	return c.kind != cmdNone
}

// StatusRecord holds the protocol state reported to the host: the current
// state, status code, poll timeout, address pointer, and the two command
// slots of the two-phase download protocol.
//
// The command slot holds an operation that was accepted but not yet
// acknowledged by the host; DFU_GETSTATUS moves it into the pending slot
// for the deferred executor. The two slots are never populated at the
// same time.
type StatusRecord struct {
	status         Status
	pollTimeout    uint32 // milliseconds, 24-bit on the wire
	state          State
	addressPointer uint32
	command        command
	pending        command
}

// newStatusRecord creates a record in dfuIDLE with the given initial
// address pointer.
func newStatusRecord(addr uint32) StatusRecord {
	return StatusRecord{
		status:         StatusOK,
		state:          StateDfuIdle,
		addressPointer: addr,
	}
}

// setStateOK transitions to state with status OK.
//
// State and status are only ever updated together: every success implies
// StatusOK, and every error implies StateDfuError.
func (r *StatusRecord) setStateOK(state State) {
	r.setStateStatus(state, StatusOK)
}

// setStateStatus transitions to state with the given status code.
func (r *StatusRecord) setStateStatus(state State, status Status) {
	r.status = status
	r.state = state
}

// promote moves the accepted command into the pending slot, leaving the
// command slot empty. The slots are never both populated.
func (r *StatusRecord) promote() {
	r.pending = r.command
	r.command = command{}
}

// clearCommands empties both command slots.
func (r *StatusRecord) clearCommands() {
	r.command = command{}
	r.pending = command{}
}

// State returns the current protocol state.
func (r *StatusRecord) State() State {
	return r.state
}

// Code returns the current status code.
func (r *StatusRecord) Code() Status {
	return r.status
}

// PollTimeout returns the reported poll timeout in milliseconds.
func (r *StatusRecord) PollTimeout() uint32 {
	return r.pollTimeout
}

// AddressPointer returns the current address pointer.
func (r *StatusRecord) AddressPointer() uint32 {
	return r.addressPointer
}

// MarshalTo serializes the 6-byte DFU_GETSTATUS reply to buf:
// bStatus, bwPollTimeout (24-bit little-endian milliseconds), bState,
// and iString (always zero; vendor error strings are unsupported).
// Returns the number of bytes written, or 0 if buf is too small.
func (r *StatusRecord) MarshalTo(buf []byte) int {
	if len(buf) < GetStatusLength {
		return 0
	}
	buf[0] = byte(r.status)
	buf[1] = byte(r.pollTimeout)
	buf[2] = byte(r.pollTimeout >> 8)
	buf[3] = byte(r.pollTimeout >> 16)
	buf[4] = byte(r.state)
	buf[5] = 0
	return GetStatusLength
}

// checkedAdd returns a + b, or an error if the sum exceeds the 32-bit
// address space. Address arithmetic never wraps silently.
func checkedAdd(a, b uint32) (uint32, error) {
	sum := uint64(a) + uint64(b)
	if sum > 0xFFFFFFFF {
		return 0, pkg.ErrOutOfRange
	}
	return uint32(sum), nil
}
