// Package mem provides memory back-end building blocks for the DFU
// engine: a typed model of the memory-layout interface string used by
// DFU hosts ("@Flash/0x08000000/16*1Ka,48*1Kg") and an emulated
// page-organized flash implementing [dfu.MemIO].
//
// The emulated flash behaves like NOR flash: programming can only clear
// bits, and erasing a page sets it to 0xFF. It is intended for tests,
// examples, and transports that stage firmware in RAM before committing
// it elsewhere.
package mem
