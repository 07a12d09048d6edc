package dfu

import "fmt"

// State represents the DFU device state (USB DFU 1.1 Spec Table A.2.2).
type State uint8

// DFU device states.
const (
	// StateAppIdle: device is running its normal application.
	StateAppIdle State = 0

	// StateAppDetach: device has received DFU_DETACH and is waiting for
	// a USB reset. Run-time mode only; not reachable here.
	StateAppDetach State = 1

	// StateDfuIdle: device is in DFU mode, waiting for requests.
	StateDfuIdle State = 2

	// StateDfuDnloadSync: device has accepted a block or command and is
	// waiting for the host to solicit status via DFU_GETSTATUS.
	StateDfuDnloadSync State = 3

	// StateDfuDnBusy: device is programming the received block into
	// nonvolatile memory.
	StateDfuDnBusy State = 4

	// StateDfuDnloadIdle: device is processing a download; expecting
	// further DFU_DNLOAD requests.
	StateDfuDnloadIdle State = 5

	// StateDfuManifestSync: device has received the final block and is
	// waiting for DFU_GETSTATUS to begin manifestation, or has completed
	// manifestation (manifestation-tolerant devices only).
	StateDfuManifestSync State = 6

	// StateDfuManifest: device is in the manifestation phase.
	StateDfuManifest State = 7

	// StateDfuManifestWaitReset: device has programmed its memories and
	// is waiting for a USB reset or power-on reset.
	StateDfuManifestWaitReset State = 8

	// StateDfuUploadIdle: device is processing an upload; expecting
	// further DFU_UPLOAD requests.
	StateDfuUploadIdle State = 9

	// StateDfuError: an error occurred; awaiting DFU_CLRSTATUS.
	StateDfuError State = 10
)

// String returns the state name as spelled in the DFU specification.
func (s State) String() string {
	switch s {
	case StateAppIdle:
		return "appIDLE"
	case StateAppDetach:
		return "appDETACH"
	case StateDfuIdle:
		return "dfuIDLE"
	case StateDfuDnloadSync:
		return "dfuDNLOAD-SYNC"
	case StateDfuDnBusy:
		return "dfuDNBUSY"
	case StateDfuDnloadIdle:
		return "dfuDNLOAD-IDLE"
	case StateDfuManifestSync:
		return "dfuMANIFEST-SYNC"
	case StateDfuManifest:
		return "dfuMANIFEST"
	case StateDfuManifestWaitReset:
		return "dfuMANIFEST-WAIT-RESET"
	case StateDfuUploadIdle:
		return "dfuUPLOAD-IDLE"
	case StateDfuError:
		return "dfuERROR"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Status represents the DFU status code reported in the first byte of
// the DFU_GETSTATUS reply (USB DFU 1.1 Spec Table A.2.1).
type Status uint8

// DFU status codes.
const (
	// StatusOK: no error condition is present.
	StatusOK Status = 0x00

	// StatusErrTarget: file is not targeted for use by this device.
	StatusErrTarget Status = 0x01

	// StatusErrFile: file is for this device but fails a
	// vendor-specific verification test.
	StatusErrFile Status = 0x02

	// StatusErrWrite: device is unable to write memory.
	StatusErrWrite Status = 0x03

	// StatusErrErase: memory erase function failed.
	StatusErrErase Status = 0x04

	// StatusErrCheckErased: memory erase check failed.
	StatusErrCheckErased Status = 0x05

	// StatusErrProg: program memory function failed.
	StatusErrProg Status = 0x06

	// StatusErrVerify: programmed memory failed verification.
	StatusErrVerify Status = 0x07

	// StatusErrAddress: received address is out of range.
	StatusErrAddress Status = 0x08

	// StatusErrNotDone: received DFU_DNLOAD with wLength = 0, but the
	// device does not think it has all of the data yet.
	StatusErrNotDone Status = 0x09

	// StatusErrFirmware: device firmware is corrupt; it cannot return
	// to run-time operation.
	StatusErrFirmware Status = 0x0A

	// StatusErrVendor: vendor-specific error.
	StatusErrVendor Status = 0x0B

	// StatusErrUsbReset: device detected unexpected USB reset signaling.
	StatusErrUsbReset Status = 0x0C

	// StatusErrPowerOnReset: device detected unexpected power-on reset.
	StatusErrPowerOnReset Status = 0x0D

	// StatusErrUnknown: something went wrong, but the device does not
	// know what it was.
	StatusErrUnknown Status = 0x0E

	// StatusErrStalledPkt: device stalled an unexpected request.
	StatusErrStalledPkt Status = 0x0F
)

// String returns the status code name as spelled in the DFU specification.
func (c Status) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusErrTarget:
		return "errTARGET"
	case StatusErrFile:
		return "errFILE"
	case StatusErrWrite:
		return "errWRITE"
	case StatusErrErase:
		return "errERASE"
	case StatusErrCheckErased:
		return "errCHECK_ERASED"
	case StatusErrProg:
		return "errPROG"
	case StatusErrVerify:
		return "errVERIFY"
	case StatusErrAddress:
		return "errADDRESS"
	case StatusErrNotDone:
		return "errNOTDONE"
	case StatusErrFirmware:
		return "errFIRMWARE"
	case StatusErrVendor:
		return "errVENDOR"
	case StatusErrUsbReset:
		return "errUSBR"
	case StatusErrPowerOnReset:
		return "errPOR"
	case StatusErrUnknown:
		return "errUNKNOWN"
	case StatusErrStalledPkt:
		return "errSTALLEDPKT"
	default:
		return fmt.Sprintf("unknown(0x%02X)", uint8(c))
	}
}
