package dfu

// Interface class identification for a DFU-mode device
// (USB DFU 1.1 Spec Table 4.4).
const (
	ClassApplicationSpecific = 0xFE // bInterfaceClass
	SubclassDFU              = 0x01 // bInterfaceSubClass
	ProtocolRunTime          = 0x01 // run-time mode (not implemented)
	ProtocolDFUMode          = 0x02 // DFU mode
)

// DFU class-specific request codes (USB DFU 1.1 Spec Table 3.2).
const (
	RequestDetach      = 0x00 // DFU_DETACH (run-time mode only, unhandled)
	RequestDnload      = 0x01 // DFU_DNLOAD
	RequestUpload      = 0x02 // DFU_UPLOAD
	RequestGetStatus   = 0x03 // DFU_GETSTATUS
	RequestClearStatus = 0x04 // DFU_CLRSTATUS
	RequestGetState    = 0x05 // DFU_GETSTATE
	RequestAbort       = 0x06 // DFU_ABORT
)

// Download sub-command opcodes, carried in the first payload byte of a
// DFU_DNLOAD request with wValue 0 (DfuSe extension, AN3156).
const (
	CmdGetCommands       = 0x00
	CmdSetAddressPointer = 0x21
	CmdErase             = 0x41
	CmdReadUnprotect     = 0x92
)

// Read unprotect is deliberately unimplemented: the opcode is recognized
// nowhere, so any attempt falls through to the stall path.
const hasReadUnprotect = false

// GetStatusLength is the exact size of the DFU_GETSTATUS reply.
const GetStatusLength = 6

// DFUVersion is the bcdDFUVersion reported in the functional descriptor.
const DFUVersion = 0x011A
