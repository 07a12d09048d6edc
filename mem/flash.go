package mem

import (
	"time"

	"github.com/ardnew/softdfu/dfu"
	"github.com/ardnew/softdfu/pkg"
)

// Flash is an emulated page-organized flash implementing [dfu.MemIO].
//
// Programming follows NOR semantics: bits can only be cleared, so a
// page must be erased (to 0xFF) before it can hold arbitrary data, and
// every program is verified back. The write buffer is shared between
// download staging and nothing else; the protocol guarantees it holds
// valid data before a program is requested.
//
// Flash contains no locking: the DFU engine serializes all access.
type Flash struct {
	region     Region
	data       []byte
	buffer     []byte
	bufLen     int
	manifested bool
	resets     int
}

// NewFlash creates an erased flash covering region, with a write buffer
// sized for transferSize-byte blocks.
func NewFlash(region Region, transferSize int) (*Flash, error) {
	size := region.Size()
	if size <= 0 || len(region.Areas) == 0 {
		return nil, pkg.ErrInvalidParameter
	}
	if transferSize <= 0 {
		return nil, pkg.ErrInvalidParameter
	}
	f := &Flash{
		region: region,
		data:   make([]byte, size),
		buffer: make([]byte, transferSize),
	}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f, nil
}

// Region returns the flash's memory region.
func (f *Flash) Region() Region {
	return f.region
}

// Contents returns the flash contents. The slice references internal
// storage; do not modify.
func (f *Flash) Contents() []byte {
	return f.data
}

// Manifested returns true once Manifestation has been invoked.
func (f *Flash) Manifested() bool {
	return f.manifested
}

// Resets returns the number of USB bus resets observed.
func (f *Flash) Resets() int {
	return f.resets
}

// Config returns a DFU configuration describing this flash: tolerant
// manifestation, upload and download enabled, nominal flash timings,
// and the region's layout string.
func (f *Flash) Config() dfu.Config {
	const pageErase = 40 * time.Millisecond
	pages := 0
	for _, a := range f.region.Areas {
		if a.Mode.CanErase() {
			pages += a.Count
		}
	}
	return dfu.Config{
		InitialAddressPointer: f.region.Base,
		MemLayout:             f.region.String(),
		CanDownload:           true,
		CanUpload:             true,
		ManifestationTolerant: true,
		BlockProgramTime:      3 * time.Millisecond,
		PageEraseTime:         pageErase,
		FullEraseTime:         time.Duration(pages) * pageErase,
		TransferSize:          uint16(len(f.buffer)),
	}
}

// StoreWriteBuffer buffers a host-provided block prior to programming.
func (f *Flash) StoreWriteBuffer(src []byte) error {
	if len(src) > len(f.buffer) {
		return pkg.ErrWriteBuffer
	}
	f.bufLen = copy(f.buffer, src)
	return nil
}

// ReadBlock returns up to length bytes at address. Reads past the end
// of the region return a short (possibly empty) block to signal
// end-of-data.
func (f *Flash) ReadBlock(address uint32, length int) ([]byte, error) {
	if address < f.region.Base {
		return nil, dfu.MemErrAddress
	}
	off := int(address - f.region.Base)
	if off >= len(f.data) {
		return nil, nil
	}
	mode, ok := f.region.ModeAt(address)
	if !ok || !mode.CanRead() {
		return nil, dfu.MemErrTarget
	}
	end := off + length
	if end > len(f.data) {
		end = len(f.data)
	}
	return f.data[off:end], nil
}

// ProgramBlock commits the buffered bytes at address, clearing bits
// only, and verifies the result.
func (f *Flash) ProgramBlock(address uint32, length int) error {
	if address < f.region.Base {
		return dfu.MemErrAddress
	}
	off := int(address - f.region.Base)
	if off >= len(f.data) {
		return dfu.MemErrAddress
	}
	mode, ok := f.region.ModeAt(address)
	if !ok || !mode.CanWrite() {
		return dfu.MemErrWrite
	}
	if length > f.bufLen {
		return dfu.MemErrProg
	}
	if off+length > len(f.data) {
		return dfu.MemErrProg
	}
	for i := 0; i < length; i++ {
		f.data[off+i] &= f.buffer[i]
	}
	for i := 0; i < length; i++ {
		if f.data[off+i] != f.buffer[i] {
			return dfu.MemErrVerify
		}
	}
	return nil
}

// EraseBlock erases the page containing address to 0xFF.
func (f *Flash) EraseBlock(address uint32) error {
	if !f.region.Contains(address) {
		return dfu.MemErrAddress
	}
	mode, _ := f.region.ModeAt(address)
	if !mode.CanErase() {
		return dfu.MemErrErase
	}
	base, size, ok := f.region.PageAt(address)
	if !ok {
		return dfu.MemErrAddress
	}
	off := int(base - f.region.Base)
	for i := off; i < off+size; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

// EraseAllBlocks erases every erasable page in the region.
func (f *Flash) EraseAllBlocks() error {
	off := 0
	for _, a := range f.region.Areas {
		if a.Mode.CanErase() {
			for i := off; i < off+a.Size(); i++ {
				f.data[i] = 0xFF
			}
		}
		off += a.Size()
	}
	return nil
}

// Manifestation records that the firmware was finalized. The emulated
// flash is manifestation-tolerant and always returns.
func (f *Flash) Manifestation() error {
	f.manifested = true
	pkg.LogInfo(pkg.ComponentMemory, "firmware manifested",
		"region", f.region.Name)
	return nil
}

// USBReset counts bus resets; the emulated flash has no application
// firmware to jump to.
func (f *Flash) USBReset() {
	f.resets++
}

// Compile-time interface check
var _ dfu.MemIO = (*Flash)(nil)
