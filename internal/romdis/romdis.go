// Package romdis disassembles the x86 real-mode entry stub of a legacy
// option ROM. The POST firmware far-calls offset 3 of the image, so the
// stub begins there.
package romdis

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// InitVectorOffset is where the entry stub starts inside a legacy image.
const InitVectorOffset = 3

// Inst is one decoded real-mode instruction.
type Inst struct {
	Off  uint64 // offset of the instruction inside the image
	Len  int
	Op   string // mnemonic in lowercase
	Text string // Intel-syntax disassembly
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Disassemble decodes up to max 16-bit instructions from code, labeling them
// with offsets starting at pc. It stops early at a return or an undecodable
// byte sequence; bytes already decoded are still returned.
func Disassemble(code []byte, pc uint64, max int) Stream {
	var out Stream
	for len(code) > 0 && len(out) < max {
		inst, err := x86asm.Decode(code, 16)
		// A truncated instruction can decode as a bare prefix with no opcode.
		if err != nil || inst.Op == 0 {
			out = append(out, Inst{Off: pc, Len: 1, Op: "db", Text: fmt.Sprintf("db 0x%02x", code[0])})
			break
		}
		op := strings.ToLower(inst.Op.String())
		out = append(out, Inst{
			Off:  pc,
			Len:  inst.Len,
			Op:   op,
			Text: x86asm.IntelSyntax(inst, pc, nil),
		})
		if inst.Op == x86asm.RET || inst.Op == x86asm.LRET || inst.Op == x86asm.IRET {
			break
		}
		code = code[inst.Len:]
		pc += uint64(inst.Len)
	}
	return out
}

// Format renders the stream one instruction per line with the offset in the
// left column.
func (s Stream) Format() string {
	var b strings.Builder
	for _, inst := range s {
		fmt.Fprintf(&b, "%04x  %s\n", inst.Off, inst.Text)
	}
	return b.String()
}
