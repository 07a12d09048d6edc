package dfu

import "github.com/ardnew/softdfu/pkg"

// DescriptorTypeFunctional is the DFU functional descriptor type.
const DescriptorTypeFunctional = 0x21

// FunctionalDescriptorSize is the size of the functional descriptor.
const FunctionalDescriptorSize = 9

// bmAttributes bit flags of the functional descriptor.
const (
	AttrCanDownload           = 1 << 0 // bitCanDnload
	AttrCanUpload             = 1 << 1 // bitCanUpload
	AttrManifestationTolerant = 1 << 2 // bitManifestationTolerant
	AttrWillDetach            = 1 << 3 // bitWillDetach
)

// FunctionalDescriptor is the 9-byte DFU functional descriptor emitted
// after the interface descriptor during enumeration.
type FunctionalDescriptor struct {
	Attributes    uint8  // bmAttributes
	DetachTimeout uint16 // wDetachTimeOut in milliseconds
	TransferSize  uint16 // wTransferSize
	Version       uint16 // bcdDFUVersion
}

// FunctionalDescriptor builds the functional descriptor from the
// engine's configuration. bitWillDetach is always set.
func (d *DFU) FunctionalDescriptor() FunctionalDescriptor {
	attrs := uint8(AttrWillDetach)
	if d.cfg.ManifestationTolerant {
		attrs |= AttrManifestationTolerant
	}
	if d.cfg.CanUpload {
		attrs |= AttrCanUpload
	}
	if d.cfg.CanDownload {
		attrs |= AttrCanDownload
	}
	return FunctionalDescriptor{
		Attributes:    attrs,
		DetachTimeout: uint16(ms(d.cfg.DetachTimeout)),
		TransferSize:  d.cfg.TransferSize,
		Version:       DFUVersion,
	}
}

// MarshalTo serializes the descriptor to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (f *FunctionalDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < FunctionalDescriptorSize {
		return 0
	}
	buf[0] = FunctionalDescriptorSize
	buf[1] = DescriptorTypeFunctional
	buf[2] = f.Attributes
	buf[3] = byte(f.DetachTimeout)
	buf[4] = byte(f.DetachTimeout >> 8)
	buf[5] = byte(f.TransferSize)
	buf[6] = byte(f.TransferSize >> 8)
	buf[7] = byte(f.Version)
	buf[8] = byte(f.Version >> 8)
	return FunctionalDescriptorSize
}

// ParseFunctionalDescriptor parses a functional descriptor from data
// into out. Returns an error if the data is too short or the descriptor
// type does not match.
func ParseFunctionalDescriptor(data []byte, out *FunctionalDescriptor) error {
	if len(data) < FunctionalDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[0] != FunctionalDescriptorSize || data[1] != DescriptorTypeFunctional {
		return pkg.ErrInvalidParameter
	}
	out.Attributes = data[2]
	out.DetachTimeout = uint16(data[3]) | uint16(data[4])<<8
	out.TransferSize = uint16(data[5]) | uint16(data[6])<<8
	out.Version = uint16(data[7]) | uint16(data[8])<<8
	return nil
}
