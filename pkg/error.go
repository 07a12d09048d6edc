package pkg

import "errors"

// Control-transfer and protocol errors.
var (
	// ErrStall indicates a request was rejected (control pipe stalled).
	ErrStall = errors.New("request stalled")

	// ErrProtocol indicates a protocol error.
	ErrProtocol = errors.New("protocol error")

	// ErrInvalidState indicates an invalid state for the operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidRequest indicates an invalid or unsupported request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrTransferTooLong indicates data exceeds the transfer capacity.
	ErrTransferTooLong = errors.New("transfer too long")

	// ErrTransferComplete indicates the transfer was already resolved.
	ErrTransferComplete = errors.New("transfer already complete")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrDescriptorTooShort indicates the descriptor buffer is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrWriteBuffer indicates the back-end could not buffer host data.
	ErrWriteBuffer = errors.New("write buffer store failed")

	// ErrOutOfRange indicates an address outside the back-end's region.
	ErrOutOfRange = errors.New("address out of range")

	// ErrReset indicates a bus reset was received.
	ErrReset = errors.New("bus reset")
)
