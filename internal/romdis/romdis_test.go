package romdis

import (
	"strings"
	"testing"
)

func TestDisassembleStopsAtFarReturn(t *testing.T) {
	// cli; mov ax, 0x1234; push ax; retf; then trailing garbage that must
	// not be decoded.
	code := []byte{0xFA, 0xB8, 0x34, 0x12, 0x50, 0xCB, 0x00, 0x00}

	s := Disassemble(code, 3, 16)
	want := []string{"cli", "mov", "push", "lret"}
	if len(s) != len(want) {
		t.Fatalf("decoded %d instructions, want %d: %+v", len(s), len(want), s)
	}
	for i, op := range want {
		if s[i].Op != op {
			t.Errorf("inst %d op = %q, want %q", i, s[i].Op, op)
		}
	}
	if s[0].Off != 3 || s[1].Off != 4 || s[2].Off != 7 {
		t.Fatalf("offsets = %d %d %d, want 3 4 7", s[0].Off, s[1].Off, s[2].Off)
	}
	if s[1].Len != 3 {
		t.Fatalf("mov length = %d, want 3", s[1].Len)
	}
}

func TestDisassembleHonorsMax(t *testing.T) {
	code := []byte{0x90, 0x90, 0x90, 0x90} // nop x4
	if got := len(Disassemble(code, 0, 2)); got != 2 {
		t.Fatalf("decoded %d instructions, want 2", got)
	}
}

func TestDisassembleTruncatedInstruction(t *testing.T) {
	// mov ax, imm16 with the immediate cut off.
	s := Disassemble([]byte{0xB8}, 0, 16)
	if len(s) != 1 || s[0].Op != "db" {
		t.Fatalf("stream = %+v, want a single db marker", s)
	}
}

func TestFormat(t *testing.T) {
	s := Disassemble([]byte{0xFA, 0xC3}, 3, 16)
	text := s.Format()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("formatted %d lines, want 2:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "0003  cli") {
		t.Fatalf("first line = %q", lines[0])
	}
}
