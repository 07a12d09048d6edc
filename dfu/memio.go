package dfu

import (
	"errors"
	"fmt"
	"time"
)

// MemIO is the memory back-end contract required by the DFU engine.
//
// All calls are synchronous and are invoked from whatever execution
// context the transport layer uses (typically a USB interrupt or a
// single polling loop). Erase, program, and manifestation are only ever
// invoked from [DFU.Poll], never from inside a request handler, and may
// block for roughly the durations declared in [Config].
//
// Failures should be reported as [MemError] (or [ManifestError] from
// Manifestation) so they map to the proper DFU status code; any other
// error is reported to the host as StatusErrUnknown.
type MemIO interface {
	// StoreWriteBuffer buffers a host-provided block prior to
	// programming. It must not write to persistent storage. The buffer
	// may be shared with ReadBlock: the protocol never triggers a
	// program while sending data to the host.
	StoreWriteBuffer(src []byte) error

	// ReadBlock returns up to length bytes of memory at address.
	// Returning fewer bytes than the configured transfer size signals
	// end-of-data to the engine. The implementation must check that the
	// address and the whole block lie within its region.
	ReadBlock(address uint32, length int) ([]byte, error)

	// ProgramBlock commits the previously buffered bytes at address.
	// The implementation must check that address is in its region and
	// that the whole block fits.
	ProgramBlock(address uint32, length int) error

	// EraseBlock erases the page containing address. The implementation
	// must validate the address or return an error.
	EraseBlock(address uint32) error

	// EraseAllBlocks erases the entire region.
	EraseAllBlocks() error

	// Manifestation finalizes and optionally activates the received
	// firmware. Manifestation-tolerant back-ends return nil; a
	// non-tolerant back-end should activate the new firmware and not
	// return at all.
	Manifestation() error

	// USBReset is called on every USB bus reset. After a completed
	// update the back-end may jump to the application firmware and not
	// return. The implementation must distinguish actual host resets
	// from first-connect at startup.
	USBReset()
}

// MemError reports a memory operation failure from a back-end. Values
// correspond one-to-one to the DFU status codes reported to the host.
type MemError uint8

// Memory operation errors.
const (
	MemErrTarget      = MemError(StatusErrTarget)      // file not targeted for this device
	MemErrFile        = MemError(StatusErrFile)        // vendor-specific verification failed
	MemErrWrite       = MemError(StatusErrWrite)       // unable to write memory
	MemErrErase       = MemError(StatusErrErase)       // erase function failed
	MemErrCheckErased = MemError(StatusErrCheckErased) // erase check failed
	MemErrProg        = MemError(StatusErrProg)        // program function failed
	MemErrVerify      = MemError(StatusErrVerify)      // programmed memory failed verification
	MemErrAddress     = MemError(StatusErrAddress)     // address out of range
	MemErrVendor      = MemError(StatusErrVendor)      // vendor-specific error
	MemErrUnknown     = MemError(StatusErrUnknown)     // unspecified failure
)

// Error implements the error interface.
func (e MemError) Error() string {
	return fmt.Sprintf("memory operation failed: %s", Status(e))
}

// ManifestError reports a manifestation failure from a back-end. Values
// correspond one-to-one to the DFU status codes reported to the host.
type ManifestError uint8

// Manifestation errors.
const (
	ManifestErrTarget   = ManifestError(StatusErrTarget)   // file not targeted for this device
	ManifestErrFile     = ManifestError(StatusErrFile)     // vendor-specific verification failed
	ManifestErrNotDone  = ManifestError(StatusErrNotDone)  // device does not have all the data yet
	ManifestErrFirmware = ManifestError(StatusErrFirmware) // firmware is corrupt
	ManifestErrVendor   = ManifestError(StatusErrVendor)   // vendor-specific error
	ManifestErrUnknown  = ManifestError(StatusErrUnknown)  // unspecified failure
)

// Error implements the error interface.
func (e ManifestError) Error() string {
	return fmt.Sprintf("manifestation failed: %s", Status(e))
}

// memStatus maps a ReadBlock/ProgramBlock/EraseBlock/EraseAllBlocks
// error to the status code reported to the host.
func memStatus(err error) Status {
	var me MemError
	if errors.As(err, &me) {
		switch me {
		case MemErrTarget, MemErrFile, MemErrWrite, MemErrErase,
			MemErrCheckErased, MemErrProg, MemErrVerify,
			MemErrAddress, MemErrVendor:
			return Status(me)
		}
	}
	return StatusErrUnknown
}

// manifestStatus maps a Manifestation error to the status code reported
// to the host.
func manifestStatus(err error) Status {
	var me ManifestError
	if errors.As(err, &me) {
		switch me {
		case ManifestErrTarget, ManifestErrFile, ManifestErrNotDone,
			ManifestErrFirmware, ManifestErrVendor:
			return Status(me)
		}
	}
	return StatusErrUnknown
}

// Config carries the back-end capability flags, timings, and transfer
// geometry. Values are fixed for the lifetime of the [DFU] instance.
type Config struct {
	// InitialAddressPointer is the address pointer value at
	// construction, usually the start of the target memory region.
	InitialAddressPointer uint32

	// MemLayout describes the memory regions this interface works with,
	// in the "@name/base/areas" format emitted as the interface string
	// during enumeration. See the mem package for a builder/parser.
	MemLayout string

	// CanDownload sets bitCanDnload in the functional descriptor.
	CanDownload bool

	// CanUpload sets bitCanUpload in the functional descriptor.
	CanUpload bool

	// ManifestationTolerant sets bitManifestationTolerant and selects
	// the post-manifestation path: back to dfuIDLE when true,
	// dfuMANIFEST-WAIT-RESET when false.
	ManifestationTolerant bool

	// BlockProgramTime is how long programming one block takes; it is
	// reported as the GETSTATUS poll timeout while a write is pending.
	BlockProgramTime time.Duration

	// PageEraseTime is the poll timeout for a single page erase.
	PageEraseTime time.Duration

	// FullEraseTime is the poll timeout for a full erase.
	FullEraseTime time.Duration

	// ManifestationTime is the poll timeout after the final zero-length
	// download. Zero selects the default of 1ms.
	ManifestationTime time.Duration

	// DetachTimeout is the wDetachTimeOut descriptor field. Zero
	// selects the default of 250ms. Unused in DFU-mode-only devices.
	DetachTimeout time.Duration

	// TransferSize is the maximum block size for ReadBlock and
	// ProgramBlock, bounded by the transport's control endpoint buffer.
	// Zero selects the default of 128 bytes.
	TransferSize uint16
}

// Config defaults.
const (
	DefaultManifestationTime = 1 * time.Millisecond
	DefaultDetachTimeout     = 250 * time.Millisecond
	DefaultTransferSize      = 128
)

// withDefaults returns cfg with zero-value fields replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.ManifestationTime == 0 {
		cfg.ManifestationTime = DefaultManifestationTime
	}
	if cfg.DetachTimeout == 0 {
		cfg.DetachTimeout = DefaultDetachTimeout
	}
	if cfg.TransferSize == 0 {
		cfg.TransferSize = DefaultTransferSize
	}
	return cfg
}

// ms converts a duration to whole milliseconds for wire reporting.
func ms(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}
