// z80_decode.go - base-opcode decode via the x/y/z bit fields of the
// opcode byte, so each instruction group is one small function instead
// of 256 duplicated cases.

package main

// reg8 returns the value of 8-bit register index 0..7 (B,C,D,E,H,L,(HL),A).
func (z *Z80) reg8(idx byte) byte {
	switch idx {
	case 0:
		return z.B
	case 1:
		return z.C
	case 2:
		return z.D
	case 3:
		return z.E
	case 4:
		return z.H
	case 5:
		return z.L
	case 6:
		return z.readByte(z.HL())
	default:
		return z.A
	}
}

func (z *Z80) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		z.B = v
	case 1:
		z.C = v
	case 2:
		z.D = v
	case 3:
		z.E = v
	case 4:
		z.H = v
	case 5:
		z.L = v
	case 6:
		z.writeByte(z.HL(), v)
	default:
		z.A = v
	}
}

func (z *Z80) regPair(idx byte) uint16 {
	switch idx {
	case 0:
		return z.BC()
	case 1:
		return z.DE()
	case 2:
		return z.HL()
	default:
		return z.SP
	}
}

func (z *Z80) setRegPair(idx byte, v uint16) {
	switch idx {
	case 0:
		z.SetBC(v)
	case 1:
		z.SetDE(v)
	case 2:
		z.SetHL(v)
	default:
		z.SP = v
	}
}

func (z *Z80) regPair2(idx byte) uint16 {
	switch idx {
	case 0:
		return z.BC()
	case 1:
		return z.DE()
	case 2:
		return z.HL()
	default:
		return z.AF()
	}
}

func (z *Z80) setRegPair2(idx byte, v uint16) {
	switch idx {
	case 0:
		z.SetBC(v)
	case 1:
		z.SetDE(v)
	case 2:
		z.SetHL(v)
	default:
		z.SetAF(v)
	}
}

func (z *Z80) condition(idx byte) bool {
	switch idx {
	case 0:
		return !z.Flag(FlagZ)
	case 1:
		return z.Flag(FlagZ)
	case 2:
		return !z.Flag(FlagC)
	case 3:
		return z.Flag(FlagC)
	case 4:
		return !z.Flag(FlagPV)
	case 5:
		return z.Flag(FlagPV)
	case 6:
		return !z.Flag(FlagS)
	default:
		return z.Flag(FlagS)
	}
}

// applyALU performs ALU operation idx (ADD,ADC,SUB,SBC,AND,XOR,OR,CP) on A.
func (z *Z80) applyALU(idx byte, v byte) {
	switch idx {
	case 0:
		z.addA(v, false)
	case 1:
		z.addA(v, true)
	case 2:
		z.subA(v, false, false)
	case 3:
		z.subA(v, true, false)
	case 4:
		z.andA(v)
	case 5:
		z.xorA(v)
	case 6:
		z.orA(v)
	default:
		z.subA(v, false, true)
	}
}

// execBase dispatches a base (unprefixed) opcode already fetched into op.
func (z *Z80) execBase(op byte) {
	x := op >> 6
	y := (op >> 3) & 7
	zz := op & 7

	switch x {
	case 0:
		z.execBaseX0(op, y, zz)
	case 1:
		if y == 6 && zz == 6 {
			z.Halted = true
			z.PC--
			return
		}
		v := z.reg8(zz)
		z.setReg8(y, v)
	case 2:
		z.applyALU(y, z.reg8(zz))
	default:
		z.execBaseX3(op, y, zz)
	}
}

func (z *Z80) execBaseX0(op, y, zz byte) {
	switch zz {
	case 0:
		switch y {
		case 0:
			// NOP
		case 1:
			z.ExAF()
		case 2:
			d := int8(z.fetchByte())
			z.B--
			z.tStates++
			if z.B != 0 {
				z.jr(d)
			}
		case 3:
			d := int8(z.fetchByte())
			z.jr(d)
		default:
			d := int8(z.fetchByte())
			if z.condition(y - 4) {
				z.jr(d)
			}
		}
	case 1:
		if y&1 == 0 {
			v := z.fetchWord()
			z.setRegPair(y>>1, v)
		} else {
			hl := z.HL()
			rp := z.regPair(y >> 1)
			r, f := z.add16(hl, rp, false, false, false)
			z.SetHL(r)
			z.F = f
			z.tStates += 7
		}
	case 2:
		switch y {
		case 0:
			z.writeByte(z.BC(), z.A)
		case 1:
			z.A = z.readByte(z.BC())
		case 2:
			z.writeByte(z.DE(), z.A)
		case 3:
			z.A = z.readByte(z.DE())
		case 4:
			addr := z.fetchWord()
			z.writeByte(addr, z.L)
			z.writeByte(addr+1, z.H)
		case 5:
			addr := z.fetchWord()
			lo := z.readByte(addr)
			hi := z.readByte(addr + 1)
			z.SetHL(uint16(hi)<<8 | uint16(lo))
		case 6:
			addr := z.fetchWord()
			z.writeByte(addr, z.A)
		default:
			addr := z.fetchWord()
			z.A = z.readByte(addr)
		}
	case 3:
		rp := y >> 1
		v := z.regPair(rp)
		if y&1 == 0 {
			z.setRegPair(rp, v+1)
		} else {
			z.setRegPair(rp, v-1)
		}
		z.tStates += 2
	case 4:
		v := z.reg8(y)
		z.setReg8(y, z.incReg(v))
	case 5:
		v := z.reg8(y)
		z.setReg8(y, z.decReg(v))
	case 6:
		n := z.fetchByte()
		z.setReg8(y, n)
	default:
		switch y {
		case 0:
			a := z.A
			c := byte(0)
			if a&0x80 != 0 {
				c = 1
			}
			z.A = (a << 1) | c
			z.F = (z.F & (FlagS | FlagZ | FlagPV)) | c | (z.A & (FlagY | FlagX))
		case 1:
			a := z.A
			c := a & 1
			z.A = (a >> 1) | (c << 7)
			z.F = (z.F & (FlagS | FlagZ | FlagPV)) | c | (z.A & (FlagY | FlagX))
		case 2:
			a := z.A
			oldC := byte(0)
			if z.Flag(FlagC) {
				oldC = 1
			}
			newC := byte(0)
			if a&0x80 != 0 {
				newC = 1
			}
			z.A = (a << 1) | oldC
			z.F = (z.F & (FlagS | FlagZ | FlagPV)) | newC | (z.A & (FlagY | FlagX))
		case 3:
			a := z.A
			oldC := byte(0)
			if z.Flag(FlagC) {
				oldC = 1
			}
			newC := a & 1
			z.A = (a >> 1) | (oldC << 7)
			z.F = (z.F & (FlagS | FlagZ | FlagPV)) | newC | (z.A & (FlagY | FlagX))
		case 4:
			z.daa()
		case 5:
			z.cpl()
		case 6:
			z.scf()
		default:
			z.ccf()
		}
	}
}

func (z *Z80) jr(d int8) {
	z.PC = uint16(int32(z.PC) + int32(d))
	z.tStates += 5
}

func (z *Z80) execBaseX3(op, y, zz byte) {
	switch zz {
	case 0:
		z.tStates++
		if z.condition(y) {
			z.PC = z.pop()
		}
	case 1:
		if y&1 == 0 {
			z.setRegPair2(y>>1, z.pop())
		} else {
			switch y >> 1 {
			case 0:
				z.PC = z.pop()
			case 1:
				z.Exx()
			case 2:
				z.PC = z.HL()
			default:
				z.SP = z.HL()
				z.tStates += 2
			}
		}
	case 2:
		addr := z.fetchWord()
		if z.condition(y) {
			z.PC = addr
		}
	case 3:
		switch y {
		case 0:
			addr := z.fetchWord()
			z.PC = addr
		case 1:
			z.execCB()
		case 2:
			n := z.fetchByte()
			z.outPort(uint16(z.A)<<8|uint16(n), z.A)
		case 3:
			n := z.fetchByte()
			z.A = z.inPort(uint16(z.A)<<8 | uint16(n))
		case 4:
			hl := z.HL()
			sp0 := z.readByte(z.SP)
			sp1 := z.readByte(z.SP + 1)
			z.writeByte(z.SP, byte(hl))
			z.writeByte(z.SP+1, byte(hl>>8))
			z.SetHL(uint16(sp1)<<8 | uint16(sp0))
			z.tStates += 3
		case 5:
			de := z.DE()
			z.SetDE(z.HL())
			z.SetHL(de)
		case 6:
			z.IFF1 = false
			z.IFF2 = false
		default:
			z.IFF1 = true
			z.IFF2 = true
			z.eiJustExecuted = true
		}
	case 4:
		addr := z.fetchWord()
		if z.condition(y) {
			z.tStates++
			z.push(z.PC)
			z.PC = addr
		}
	case 5:
		if y&1 == 0 {
			z.push(z.regPair2(y >> 1))
			z.tStates++
		} else {
			switch y >> 1 {
			case 0:
				addr := z.fetchWord()
				z.push(z.PC)
				z.PC = addr
				z.tStates++
			case 1:
				z.execDD()
			case 2:
				z.execED()
			default:
				z.execFD()
			}
		}
	case 6:
		n := z.fetchByte()
		z.applyALU(y, n)
	default:
		z.push(z.PC)
		z.PC = uint16(y) * 8
		z.tStates++
	}
}
