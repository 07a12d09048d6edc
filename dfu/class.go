package dfu

import (
	"encoding/binary"

	"github.com/ardnew/softdfu/control"
	"github.com/ardnew/softdfu/pkg"
)

// DFU implements the device side of the DFU 1.1a protocol for a single
// interface. It owns the status record exclusively; the transport must
// serialize all calls (see package documentation).
type DFU struct {
	cfg      Config
	mem      MemIO
	ifaceNum uint8
	status   StatusRecord
}

// New creates a DFU engine for the given interface number, backed by mem.
// Zero-value Config timings and transfer size take protocol defaults.
func New(cfg Config, mem MemIO, ifaceNum uint8) (*DFU, error) {
	if mem == nil {
		return nil, pkg.ErrInvalidParameter
	}
	cfg = cfg.withDefaults()
	return &DFU{
		cfg:      cfg,
		mem:      mem,
		ifaceNum: ifaceNum,
		status:   newStatusRecord(cfg.InitialAddressPointer),
	}, nil
}

// SetUnexpectedResetState may be called just after New to boot directly
// into dfuERROR with errPOR ("device detected unexpected power on reset")
// instead of dfuIDLE.
func (d *DFU) SetUnexpectedResetState() {
	d.status.setStateStatus(StateDfuError, StatusErrPowerOnReset)
}

// SetFirmwareCorruptedState may be called just after New to boot directly
// into dfuERROR with errFIRMWARE ("device's firmware is corrupt")
// instead of dfuIDLE.
func (d *DFU) SetFirmwareCorruptedState() {
	d.status.setStateStatus(StateDfuError, StatusErrFirmware)
}

// AddressPointer returns the current address pointer value.
func (d *DFU) AddressPointer() uint32 {
	return d.status.addressPointer
}

// State returns the current protocol state.
func (d *DFU) State() State {
	return d.status.state
}

// StatusCode returns the current status code.
func (d *DFU) StatusCode() Status {
	return d.status.status
}

// InterfaceNumber returns the interface number this engine answers for.
func (d *DFU) InterfaceNumber() uint8 {
	return d.ifaceNum
}

// MemLayout returns the memory layout interface string for enumeration.
func (d *DFU) MemLayout() string {
	return d.cfg.MemLayout
}

// claims reports whether this engine owns the request: class-scoped,
// interface recipient, and wIndex addressing this interface. Requests
// that fail the gate are left unhandled so other classes on the same
// device can claim them.
func (d *DFU) claims(setup *control.SetupPacket) bool {
	return setup.IsClass() &&
		setup.IsInterfaceRecipient() &&
		setup.Index == uint16(d.ifaceNum)
}

// ControlIn handles a device-to-host control request. It returns false
// if the request is not addressed to this interface; otherwise the
// transfer is resolved and true is returned. Request codes inside this
// class's space that the engine does not recognize are rejected.
func (d *DFU) ControlIn(tx *control.In) bool {
	setup := tx.Setup()
	if !d.claims(setup) {
		return false
	}

	switch setup.Request {
	case RequestUpload:
		d.upload(tx)
	case RequestGetStatus:
		d.getStatus(tx)
	case RequestGetState:
		d.getState(tx)
	default:
		tx.Reject()
	}
	return true
}

// ControlOut handles a host-to-device control request. It returns false
// if the request is not addressed to this interface; otherwise the
// transfer is resolved and true is returned. DFU_DETACH is not handled:
// run-time mode is not implemented, so it falls to the reject path.
func (d *DFU) ControlOut(tx *control.Out) bool {
	setup := tx.Setup()
	if !d.claims(setup) {
		return false
	}

	switch setup.Request {
	case RequestDnload:
		d.download(tx)
	case RequestClearStatus:
		d.clearStatus(tx)
	case RequestAbort:
		d.abort(tx)
	default:
		tx.Reject()
	}
	return true
}

// Reset handles a USB bus reset. The back-end is notified first and may
// not return (it may jump to the application firmware). Any state other
// than the pre-activity idle states is forced into dfuERROR with
// errUSBR: a transfer interrupted by a bus reset is presumed corrupt.
func (d *DFU) Reset() {
	d.mem.USBReset()

	switch d.status.state {
	case StateDfuIdle, StateAppDetach, StateAppIdle, StateDfuManifestWaitReset:
	default:
		pkg.LogWarn(pkg.ComponentDFU, "bus reset during transfer",
			"state", d.status.state)
		d.status.setStateStatus(StateDfuError, StatusErrUsbReset)
	}
}

// rejectOut rejects a host-to-device request as a protocol violation.
func (d *DFU) rejectOut(tx *control.Out) {
	d.status.setStateStatus(StateDfuError, StatusErrStalledPkt)
	tx.Reject()
}

// rejectIn rejects a device-to-host request as a protocol violation.
func (d *DFU) rejectIn(tx *control.In) {
	d.status.setStateStatus(StateDfuError, StatusErrStalledPkt)
	tx.Reject()
}

// download handles DFU_DNLOAD: a zero-length request ends the firmware
// download and begins manifestation; wValue > 1 carries a firmware
// block; wValue == 0 carries a sub-command (set address pointer, erase).
// Each accepted operation is recorded in the command slot and executed
// only after the host polls status.
func (d *DFU) download(tx *control.Out) {
	setup := tx.Setup()

	switch d.status.state {
	case StateDfuIdle, StateDfuDnloadIdle:
	default:
		d.rejectOut(tx)
		return
	}

	if setup.Length == 0 {
		// End of firmware: begin manifestation.
		d.status.command = command{kind: cmdLeaveDFU}
		d.status.setStateOK(StateDfuManifestSync)
		tx.Accept()
		return
	}

	data := tx.Data()

	if setup.Value > 1 {
		if len(data) > 0 {
			// Whole block must arrive in one transfer; chunked
			// reconstruction is not supported.
			if err := d.mem.StoreWriteBuffer(data); err != nil {
				pkg.LogWarn(pkg.ComponentDFU, "write buffer store failed",
					"error", err)
				d.rejectOut(tx)
				return
			}
			blockNum := setup.Value - 2
			d.status.command = command{
				kind:     cmdWriteMemory,
				blockNum: blockNum,
				length:   uint16(len(data)),
			}
			d.status.setStateOK(StateDfuDnloadSync)
			pkg.LogDebug(pkg.ComponentDFU, "block accepted",
				"block", blockNum,
				"len", len(data))
			tx.Accept()
			return
		}
	} else if setup.Value == 0 && setup.Length >= 1 && len(data) >= 1 {
		switch data[0] {
		case CmdSetAddressPointer:
			if setup.Length == 5 && len(data) == 5 {
				addr := binary.LittleEndian.Uint32(data[1:5])
				d.status.command = command{kind: cmdSetAddressPointer, addr: addr}
				d.status.setStateOK(StateDfuDnloadSync)
				pkg.LogDebug(pkg.ComponentDFU, "set address pointer accepted",
					"addr", addr)
				tx.Accept()
				return
			}

		case CmdErase:
			if setup.Length == 5 && len(data) == 5 {
				addr := binary.LittleEndian.Uint32(data[1:5])
				d.status.command = command{kind: cmdEraseBlock, addr: addr}
				d.status.setStateOK(StateDfuDnloadSync)
				pkg.LogDebug(pkg.ComponentDFU, "erase accepted", "addr", addr)
				tx.Accept()
				return
			}
			if setup.Length == 1 {
				d.status.command = command{kind: cmdEraseAll}
				d.status.setStateOK(StateDfuDnloadSync)
				pkg.LogDebug(pkg.ComponentDFU, "erase all accepted")
				tx.Accept()
				return
			}

		case CmdReadUnprotect:
			if hasReadUnprotect {
				d.status.command = command{kind: cmdReadUnprotect}
				d.status.setStateOK(StateDfuDnloadSync)
				tx.Accept()
				return
			}
		}
	}

	d.rejectOut(tx)
}

// upload handles DFU_UPLOAD: wValue == 0 returns the supported command
// list; wValue > 1 returns the memory block addressed by the address
// pointer and block number. A short block signals end-of-data and
// returns the engine to dfuIDLE.
func (d *DFU) upload(tx *control.In) {
	setup := tx.Setup()

	switch d.status.state {
	case StateDfuIdle, StateDfuUploadIdle:
	default:
		d.rejectIn(tx)
		return
	}

	if setup.Value == 0 {
		// Get commands.
		commands := [...]byte{CmdGetCommands, CmdSetAddressPointer, CmdErase}
		if tx.Capacity() >= len(commands) {
			d.status.setStateOK(StateDfuIdle)
			tx.AcceptWith(commands[:])
			return
		}
	} else if setup.Value > 1 {
		blockNum := setup.Value - 2
		size := min(d.cfg.TransferSize, setup.Length)

		address, err := checkedAdd(d.status.addressPointer,
			uint32(blockNum)*uint32(size))
		if err != nil {
			d.status.setStateStatus(StateDfuError, StatusErrAddress)
			tx.Reject()
			return
		}

		block, err := d.mem.ReadBlock(address, int(size))
		if err != nil {
			pkg.LogWarn(pkg.ComponentDFU, "read block failed",
				"addr", address,
				"error", err)
			d.status.setStateStatus(StateDfuError, memStatus(err))
			tx.Reject()
			return
		}

		if len(block) < int(d.cfg.TransferSize) {
			// Short block: end of data.
			d.status.setStateOK(StateDfuIdle)
		} else {
			d.status.setStateOK(StateDfuUploadIdle)
		}
		tx.AcceptWith(block)
		return
	}

	d.rejectIn(tx)
}

// getStatus handles DFU_GETSTATUS. It first advances the state machine
// (promoting an accepted command to pending), then reports the 6-byte
// status record with the expected duration of whatever is now pending.
// Only a reply buffer smaller than 6 bytes is a reject; a dfuDNBUSY
// record that has not been resolved yet is a valid reply.
func (d *DFU) getStatus(tx *control.In) {
	setup := tx.Setup()

	if setup.Length >= GetStatusLength && tx.Capacity() >= GetStatusLength {
		d.advance()
		d.status.pollTimeout = d.expectedTimeout()

		var buf [GetStatusLength]byte
		d.status.MarshalTo(buf[:])
		tx.AcceptWith(buf[:])
		return
	}

	d.rejectIn(tx)
}

// getState handles DFU_GETSTATE: returns the single state byte without
// any state transition.
func (d *DFU) getState(tx *control.In) {
	if tx.Setup().Length > 0 && tx.Capacity() >= 1 {
		tx.AcceptWith([]byte{byte(d.status.state)})
		return
	}

	d.rejectIn(tx)
}

// clearStatus handles DFU_CLRSTATUS: only valid in dfuERROR, where it
// clears both command slots and returns to dfuIDLE. Clearing status from
// any other state is itself a protocol violation and enters dfuERROR.
func (d *DFU) clearStatus(tx *control.Out) {
	if d.status.state == StateDfuError {
		d.status.clearCommands()
		d.status.setStateOK(StateDfuIdle)
		tx.Accept()
		return
	}

	d.rejectOut(tx)
}

// abort handles DFU_ABORT: between steps of a download or upload
// sequence it clears both command slots and returns to dfuIDLE. From
// busy, manifest-active, or error states the request is simply stalled
// with no state change.
func (d *DFU) abort(tx *control.Out) {
	switch d.status.state {
	case StateDfuIdle, StateDfuUploadIdle, StateDfuDnloadIdle,
		StateDfuDnloadSync, StateDfuManifestSync:
		d.status.clearCommands()
		d.status.setStateOK(StateDfuIdle)
		tx.Accept()
	default:
		tx.Reject()
	}
}

// expectedTimeout returns the duration in milliseconds the host should
// wait before polling again, determined by the pending command.
func (d *DFU) expectedTimeout() uint32 {
	switch d.status.pending.kind {
	case cmdWriteMemory:
		return ms(d.cfg.BlockProgramTime)
	case cmdEraseBlock:
		return ms(d.cfg.PageEraseTime)
	case cmdEraseAll:
		return ms(d.cfg.FullEraseTime)
	case cmdLeaveDFU:
		return ms(d.cfg.ManifestationTime)
	default:
		return 0
	}
}

// advance runs the state-advance step of the two-phase protocol, invoked
// from getStatus before the reply is built.
func (d *DFU) advance() {
	switch d.status.state {
	case StateDfuDnloadSync:
		if d.status.command.isWork() {
			d.status.promote()
			d.status.setStateOK(StateDfuDnBusy)
		} else {
			// Nothing to execute; only possible for an empty
			// command slot.
			d.status.setStateOK(StateDfuDnloadIdle)
		}

	case StateDfuManifestSync:
		if d.status.command.isWork() {
			// First poll after the zero-length download: start
			// manifestation on the next processing step.
			d.status.promote()
			d.status.setStateOK(StateDfuManifest)
		} else if d.cfg.ManifestationTolerant {
			// Second poll after manifestation: leave the phase.
			d.status.setStateOK(StateDfuIdle)
		}

	case StateDfuDnBusy:
		// The deferred executor has not run yet; the busy record
		// itself is a valid reply and repeats until it does.
	}
}

// Poll executes the pending command, if any. The transport must call it
// after each request-handling cycle (or from a dedicated processing
// loop); the back-end call may block for roughly the declared duration.
// The pending slot is cleared after the attempt regardless of outcome.
func (d *DFU) Poll() {
	cmd := d.status.pending

	switch cmd.kind {
	case cmdNone:
		return

	case cmdEraseAll:
		if err := d.mem.EraseAllBlocks(); err != nil {
			d.status.setStateStatus(StateDfuError, memStatus(err))
		} else {
			d.status.setStateOK(StateDfuDnloadSync)
		}

	case cmdEraseBlock:
		if err := d.mem.EraseBlock(cmd.addr); err != nil {
			d.status.setStateStatus(StateDfuError, memStatus(err))
		} else {
			d.status.setStateOK(StateDfuDnloadSync)
		}

	case cmdLeaveDFU:
		// May not return: a non-tolerant back-end can activate the
		// new firmware here.
		if err := d.mem.Manifestation(); err != nil {
			d.status.setStateStatus(StateDfuError, manifestStatus(err))
		} else if d.cfg.ManifestationTolerant {
			d.status.setStateOK(StateDfuManifestSync)
		} else {
			d.status.setStateOK(StateDfuManifestWaitReset)
		}

	case cmdReadUnprotect:
		// Deliberately unimplemented.
		d.status.setStateStatus(StateDfuError, StatusErrStalledPkt)

	case cmdWriteMemory:
		address, err := checkedAdd(d.status.addressPointer,
			uint32(cmd.blockNum)*uint32(cmd.length))
		if err != nil {
			d.status.setStateStatus(StateDfuError, StatusErrAddress)
			break
		}
		if err := d.mem.ProgramBlock(address, int(cmd.length)); err != nil {
			pkg.LogWarn(pkg.ComponentDFU, "program block failed",
				"addr", address,
				"error", err)
			d.status.setStateStatus(StateDfuError, memStatus(err))
		} else {
			pkg.LogDebug(pkg.ComponentDFU, "block programmed",
				"addr", address,
				"len", cmd.length)
			d.status.setStateOK(StateDfuDnloadSync)
		}

	case cmdSetAddressPointer:
		d.status.addressPointer = cmd.addr
		d.status.setStateOK(StateDfuDnloadSync)
	}

	d.status.pending = command{}
}
