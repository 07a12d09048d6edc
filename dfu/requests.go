package dfu

import "github.com/ardnew/softdfu/control"

// Setup packet constructors for the six DFU operations, for use by host
// tooling and transport test harnesses.

// GetStatusSetup initializes out as a DFU_GETSTATUS setup packet.
func GetStatusSetup(out *control.SetupPacket, ifaceNum uint8) {
	control.ClassInSetup(out, RequestGetStatus, 0, ifaceNum, GetStatusLength)
}

// GetStateSetup initializes out as a DFU_GETSTATE setup packet.
func GetStateSetup(out *control.SetupPacket, ifaceNum uint8) {
	control.ClassInSetup(out, RequestGetState, 0, ifaceNum, 1)
}

// ClearStatusSetup initializes out as a DFU_CLRSTATUS setup packet.
func ClearStatusSetup(out *control.SetupPacket, ifaceNum uint8) {
	control.ClassOutSetup(out, RequestClearStatus, 0, ifaceNum, 0)
}

// AbortSetup initializes out as a DFU_ABORT setup packet.
func AbortSetup(out *control.SetupPacket, ifaceNum uint8) {
	control.ClassOutSetup(out, RequestAbort, 0, ifaceNum, 0)
}

// DownloadSetup initializes out as a DFU_DNLOAD setup packet.
// value is the block number plus 2 for firmware blocks, 0 for
// sub-commands, and length 0 marks the end of the firmware.
func DownloadSetup(out *control.SetupPacket, ifaceNum uint8, value, length uint16) {
	control.ClassOutSetup(out, RequestDnload, value, ifaceNum, length)
}

// UploadSetup initializes out as a DFU_UPLOAD setup packet.
// value is the block number plus 2 for memory blocks, or 0 to request
// the supported command list.
func UploadSetup(out *control.SetupPacket, ifaceNum uint8, value, length uint16) {
	control.ClassInSetup(out, RequestUpload, value, ifaceNum, length)
}
