package mem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/softdfu/pkg"
)

// Mode encodes the operations supported by a memory area as bit flags.
// On the wire it becomes the trailing letter of an area descriptor:
// a=read, b=erase, c=read+erase, d=write, e=read+write, f=erase+write,
// g=read+erase+write.
type Mode uint8

// Area operation flags.
const (
	ModeRead  Mode = 1 << iota // area is readable
	ModeErase                  // area is erasable
	ModeWrite                  // area is writable
)

// modeLetters spans 'a' (read only) through 'g' (read+erase+write).
const (
	modeMin = ModeRead
	modeMax = ModeRead | ModeErase | ModeWrite
)

// Letter returns the area descriptor letter for the mode, or 0 if the
// mode is empty or out of range.
func (m Mode) Letter() byte {
	if m < modeMin || m > modeMax {
		return 0
	}
	return 'a' + byte(m) - 1
}

// ModeFromLetter returns the mode for an area descriptor letter.
func ModeFromLetter(c byte) (Mode, bool) {
	if c < 'a' || c > 'a'+byte(modeMax)-1 {
		return 0, false
	}
	return Mode(c-'a') + modeMin, true
}

// CanRead returns true if the area is readable.
func (m Mode) CanRead() bool { return m&ModeRead != 0 }

// CanErase returns true if the area is erasable.
func (m Mode) CanErase() bool { return m&ModeErase != 0 }

// CanWrite returns true if the area is writable.
func (m Mode) CanWrite() bool { return m&ModeWrite != 0 }

// Area is a run of equally sized pages sharing the same supported
// operations, e.g. "16*1Ka" = 16 pages of 1KiB, read-only.
type Area struct {
	Count    int  // number of pages
	PageSize int  // page size in bytes
	Mode     Mode // supported operations
}

// Size returns the total area size in bytes.
func (a Area) Size() int {
	return a.Count * a.PageSize
}

// String formats the area in descriptor form, e.g. "48*1Kg".
func (a Area) String() string {
	size, suffix := a.PageSize, ""
	switch {
	case size >= 1<<30 && size%(1<<30) == 0:
		size, suffix = size>>30, "G"
	case size >= 1<<20 && size%(1<<20) == 0:
		size, suffix = size>>20, "M"
	case size >= 1<<10 && size%(1<<10) == 0:
		size, suffix = size>>10, "K"
	}
	return fmt.Sprintf("%d*%d%s%c", a.Count, size, suffix, a.Mode.Letter())
}

// Region is a named memory region with a base address and a list of
// areas, matching the layout string DFU hosts parse from the interface
// string descriptor.
type Region struct {
	Name  string
	Base  uint32
	Areas []Area
}

// Size returns the total region size in bytes.
func (r Region) Size() int {
	var size int
	for _, a := range r.Areas {
		size += a.Size()
	}
	return size
}

// Contains returns true if addr lies within the region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && uint64(addr) < uint64(r.Base)+uint64(r.Size())
}

// ModeAt returns the supported operations for the area containing addr.
func (r Region) ModeAt(addr uint32) (Mode, bool) {
	if addr < r.Base {
		return 0, false
	}
	off := int(addr - r.Base)
	for _, a := range r.Areas {
		if off < a.Size() {
			return a.Mode, true
		}
		off -= a.Size()
	}
	return 0, false
}

// PageAt returns the base address and size of the page containing addr.
func (r Region) PageAt(addr uint32) (uint32, int, bool) {
	if addr < r.Base {
		return 0, 0, false
	}
	off := int(addr - r.Base)
	base := r.Base
	for _, a := range r.Areas {
		if off < a.Size() {
			page := off / a.PageSize
			return base + uint32(page*a.PageSize), a.PageSize, true
		}
		off -= a.Size()
		base += uint32(a.Size())
	}
	return 0, 0, false
}

// String formats the region as a DFU memory-layout interface string,
// e.g. "@Flash/0x08000000/16*1Ka,48*1Kg".
func (r Region) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s/0x%08X/", r.Name, r.Base)
	for i, a := range r.Areas {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}

// ParseRegion parses a DFU memory-layout interface string.
func ParseRegion(s string) (Region, error) {
	if !strings.HasPrefix(s, "@") {
		return Region{}, fmt.Errorf("region %q: missing '@': %w", s, pkg.ErrInvalidParameter)
	}
	parts := strings.Split(s[1:], "/")
	if len(parts) != 3 {
		return Region{}, fmt.Errorf("region %q: want name/base/areas: %w", s, pkg.ErrInvalidParameter)
	}

	base, err := strconv.ParseUint(parts[1], 0, 32)
	if err != nil {
		return Region{}, fmt.Errorf("region %q: base address: %w", s, err)
	}

	r := Region{Name: parts[0], Base: uint32(base)}
	for _, field := range strings.Split(parts[2], ",") {
		area, err := parseArea(field)
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		r.Areas = append(r.Areas, area)
	}
	return r, nil
}

// parseArea parses one "count*size[K|M|G]letter" field.
func parseArea(s string) (Area, error) {
	count, rest, found := strings.Cut(s, "*")
	if !found {
		return Area{}, fmt.Errorf("area %q: missing '*': %w", s, pkg.ErrInvalidParameter)
	}
	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return Area{}, fmt.Errorf("area %q: page count: %w", s, pkg.ErrInvalidParameter)
	}

	if len(rest) < 2 {
		return Area{}, fmt.Errorf("area %q: truncated: %w", s, pkg.ErrInvalidParameter)
	}
	mode, ok := ModeFromLetter(rest[len(rest)-1])
	if !ok {
		return Area{}, fmt.Errorf("area %q: mode letter: %w", s, pkg.ErrInvalidParameter)
	}
	rest = rest[:len(rest)-1]

	mult := 1
	switch rest[len(rest)-1] {
	case 'K':
		mult, rest = 1<<10, rest[:len(rest)-1]
	case 'M':
		mult, rest = 1<<20, rest[:len(rest)-1]
	case 'G':
		mult, rest = 1<<30, rest[:len(rest)-1]
	case ' ':
		rest = rest[:len(rest)-1]
	}
	size, err := strconv.Atoi(rest)
	if err != nil || size <= 0 {
		return Area{}, fmt.Errorf("area %q: page size: %w", s, pkg.ErrInvalidParameter)
	}

	return Area{Count: n, PageSize: size * mult, Mode: mode}, nil
}
