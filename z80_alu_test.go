package main

import "testing"

func TestALUAddHalfCarry(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x80) // ADD A,B
	r.cpu.A = 0x0F
	r.cpu.B = 0x01
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x10)
	requireU8(t, "F", r.cpu.F, 0x10)
}

func TestALUAddOverflow(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x80)
	r.cpu.A = 0x7F
	r.cpu.B = 0x01
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x80)
	requireU8(t, "F", r.cpu.F, 0x94)
}

func TestALUAdcCarryChains(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x88) // ADC A,B
	r.cpu.A = 0xFF
	r.cpu.B = 0x00
	r.cpu.F = FlagC
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x00)
	requireU8(t, "F", r.cpu.F, 0x51)
}

func TestALUSub(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x90) // SUB B
	r.cpu.A = 0x10
	r.cpu.B = 0x01
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x0F)
	requireU8(t, "F", r.cpu.F, 0x1A)
}

func TestALUSbcBorrowsThroughCarry(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x98) // SBC A,B
	r.cpu.A = 0x00
	r.cpu.B = 0x00
	r.cpu.F = FlagC
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0xFF)
	requireBool(t, "S", r.cpu.Flag(FlagS), true)
	requireBool(t, "C", r.cpu.Flag(FlagC), true)
	requireBool(t, "H", r.cpu.Flag(FlagH), true)
	requireBool(t, "N", r.cpu.Flag(FlagN), true)
}

func TestALUCpSetsFlagsLeavesA(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0xB8) // CP B
	r.cpu.A = 0x42
	r.cpu.B = 0x42
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x42)
	requireBool(t, "Z", r.cpu.Flag(FlagZ), true)
	requireBool(t, "N", r.cpu.Flag(FlagN), true)
	requireBool(t, "C", r.cpu.Flag(FlagC), false)
}

func TestALUCpUndocumentedBitsFromOperand(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0xB8) // CP B
	r.cpu.A = 0xFF
	r.cpu.B = 0x28 // bits 5 and 3 set
	r.run(1)
	requireU8(t, "F & (Y|X)", r.cpu.F&(FlagY|FlagX), FlagY|FlagX)
}

func TestALUAndSetsH(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0xA0) // AND B
	r.cpu.A = 0xF0
	r.cpu.B = 0x0F
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x00)
	requireU8(t, "F", r.cpu.F, 0x54) // Z | H | P (even parity)
}

func TestALUXorParityAndZero(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0xA8) // XOR B
	r.cpu.A = 0xFF
	r.cpu.B = 0xFF
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x00)
	requireU8(t, "F", r.cpu.F, 0x44)
}

func TestALUOr(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0xB0) // OR B
	r.cpu.A = 0x11
	r.cpu.B = 0x22
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x33)
	requireBool(t, "P even", r.cpu.Flag(FlagPV), true)
	requireBool(t, "C", r.cpu.Flag(FlagC), false)
}

func TestALUIncWrapsAndFlags(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x3C) // INC A
	r.cpu.A = 0x7F
	r.cpu.F = FlagC
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x80)
	requireBool(t, "PV overflow", r.cpu.Flag(FlagPV), true)
	requireBool(t, "H", r.cpu.Flag(FlagH), true)
	requireBool(t, "C preserved", r.cpu.Flag(FlagC), true)
}

func TestALUDecToZero(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x3D) // DEC A
	r.cpu.A = 0x01
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x00)
	requireBool(t, "Z", r.cpu.Flag(FlagZ), true)
	requireBool(t, "N", r.cpu.Flag(FlagN), true)
}

func TestALUDaaAfterBCDAdd(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x80, 0x27) // ADD A,B; DAA
	r.cpu.A = 0x15
	r.cpu.B = 0x27
	r.run(2)
	requireU8(t, "A", r.cpu.A, 0x42)
	requireBool(t, "C", r.cpu.Flag(FlagC), false)
}

func TestALUDaaCarryOut(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x80, 0x27) // ADD A,B; DAA
	r.cpu.A = 0x99
	r.cpu.B = 0x01
	r.run(2)
	requireU8(t, "A", r.cpu.A, 0x00) // 99+01 = 100 BCD
	requireBool(t, "C", r.cpu.Flag(FlagC), true)
	requireBool(t, "Z", r.cpu.Flag(FlagZ), true)
}

func TestALUCplSetsHN(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x2F) // CPL
	r.cpu.A = 0xAA
	r.run(1)
	requireU8(t, "A", r.cpu.A, 0x55)
	requireBool(t, "H", r.cpu.Flag(FlagH), true)
	requireBool(t, "N", r.cpu.Flag(FlagN), true)
}

func TestALUScfCcf(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x37, 0x3F) // SCF; CCF
	r.run(1)
	requireBool(t, "C after SCF", r.cpu.Flag(FlagC), true)
	r.run(1)
	requireBool(t, "C after CCF", r.cpu.Flag(FlagC), false)
	requireBool(t, "H holds old C", r.cpu.Flag(FlagH), true)
}

func TestALUAdd16SetsCarryKeepsSZ(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x09) // ADD HL,BC
	r.cpu.SetHL(0xFFFF)
	r.cpu.SetBC(0x0001)
	r.cpu.F = FlagZ | FlagS
	r.run(1)
	requireU16(t, "HL", r.cpu.HL(), 0x0000)
	requireBool(t, "C", r.cpu.Flag(FlagC), true)
	requireBool(t, "Z preserved", r.cpu.Flag(FlagZ), true)
	requireBool(t, "S preserved", r.cpu.Flag(FlagS), true)
	requireBool(t, "N cleared", r.cpu.Flag(FlagN), false)
}

func TestALURotatesThroughCarry(t *testing.T) {
	r := newZ80Rig()
	r.load(0, 0x07, 0x17, 0x0F, 0x1F) // RLCA; RLA; RRCA; RRA
	r.cpu.A = 0x80
	r.run(1)
	requireU8(t, "A after RLCA", r.cpu.A, 0x01)
	requireBool(t, "C", r.cpu.Flag(FlagC), true)
	r.run(1)
	requireU8(t, "A after RLA", r.cpu.A, 0x03) // carry shifted in
	r.run(1)
	requireU8(t, "A after RRCA", r.cpu.A, 0x81)
	requireBool(t, "C", r.cpu.Flag(FlagC), true)
	r.run(1)
	requireU8(t, "A after RRA", r.cpu.A, 0xC0)
}
