// Package dfu implements the device side of the USB Device Firmware
// Upgrade (DFU) class protocol, version 1.1a, in DFU mode.
//
// The package is a protocol engine: it interprets the class-specific
// control requests (DFU_DNLOAD, DFU_UPLOAD, DFU_GETSTATUS, DFU_CLRSTATUS,
// DFU_GETSTATE, DFU_ABORT), drives the DFU state machine, and delegates
// storage operations to a [MemIO] back-end. It performs no USB I/O;
// a transport feeds it [control.In] and [control.Out] transfers and
// relays the accept/reject outcome.
//
// # Two-phase commands
//
// Download commands are accepted immediately but executed later. The
// handler records the operation in the status record's command slot and
// enters dfuDNLOAD-SYNC. The host's next DFU_GETSTATUS moves the command
// into the pending slot, reports dfuDNBUSY together with the expected
// operation time, and the transport's next [DFU.Poll] call invokes the
// back-end. This mirrors how real devices decouple USB transaction timing
// from flash operation timing: GETSTATUS polling is the host-visible
// wait mechanism.
//
// # Typical transport loop
//
//	d, _ := dfu.New(cfg, backend, 0)
//	for {
//		setup := receiveSetup()
//		if setup.IsDeviceToHost() {
//			tx := control.NewIn(setup, replyBuf)
//			if d.ControlIn(tx) {
//				relay(tx)
//			}
//		} else {
//			tx := control.NewOut(setup, payload)
//			if d.ControlOut(tx) {
//				relay(tx)
//			}
//		}
//		d.Poll() // execute any pending erase/program/manifestation
//	}
//
// All methods must be called from a single goroutine or interrupt
// context; the engine contains no locking.
package dfu
