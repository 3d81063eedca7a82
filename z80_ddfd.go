// z80_ddfd.go - DD/FD-prefixed IX/IY instructions, including the
// DDCB/FDCB indexed bit/rotate group. Both prefixes share one
// implementation parameterized by which index register they address,
// since the only difference between DD and FD opcode tables is IX vs IY.

package main

func (z *Z80) execDD() { z.execIndexed(&z.IX) }
func (z *Z80) execFD() { z.execIndexed(&z.IY) }

// execIndexed decodes one DD- or FD-prefixed instruction, with ix
// pointing at the CPU's IX or IY field.
func (z *Z80) execIndexed(ix *uint16) {
	op := z.fetchOpcode()

	// indexed (HL)-equivalent memory operand: displacement is fetched
	// immediately after the opcode, before any further immediate bytes.
	readIndexed := func() (uint16, byte) {
		d := int8(z.fetchByte())
		addr := uint16(int32(*ix) + int32(d))
		z.tStates += 5
		return addr, z.readByte(addr)
	}

	switch op {
	case 0x21: // LD IX,nn
		*ix = z.fetchWord()
	case 0x22: // LD (nn),IX
		addr := z.fetchWord()
		z.writeByte(addr, byte(*ix))
		z.writeByte(addr+1, byte(*ix>>8))
	case 0x2A: // LD IX,(nn)
		addr := z.fetchWord()
		lo := z.readByte(addr)
		hi := z.readByte(addr + 1)
		*ix = uint16(hi)<<8 | uint16(lo)
	case 0x23: // INC IX
		*ix++
		z.tStates += 2
	case 0x2B: // DEC IX
		*ix--
		z.tStates += 2
	case 0x09, 0x19, 0x29, 0x39: // ADD IX,rp (rp2=IX when selecting "HL" slot)
		rpIdx := (op >> 4) & 3
		var operand uint16
		switch rpIdx {
		case 0:
			operand = z.BC()
		case 1:
			operand = z.DE()
		case 2:
			operand = *ix
		default:
			operand = z.SP
		}
		r, f := z.add16(*ix, operand, false, false, false)
		*ix = r
		z.F = f
		z.tStates += 7
	case 0x34: // INC (IX+d)
		addr, v := readIndexed()
		z.writeByte(addr, z.incReg(v))
		z.tStates++
	case 0x35: // DEC (IX+d)
		addr, v := readIndexed()
		z.writeByte(addr, z.decReg(v))
		z.tStates++
	case 0x36: // LD (IX+d),n
		d := int8(z.fetchByte())
		n := z.fetchByte()
		addr := uint16(int32(*ix) + int32(d))
		z.tStates += 2
		z.writeByte(addr, n)
	case 0xE1: // POP IX
		*ix = z.pop()
	case 0xE5: // PUSH IX
		z.push(*ix)
		z.tStates++
	case 0xE3: // EX (SP),IX
		lo := z.readByte(z.SP)
		hi := z.readByte(z.SP + 1)
		old := *ix
		z.writeByte(z.SP, byte(old))
		z.writeByte(z.SP+1, byte(old>>8))
		*ix = uint16(hi)<<8 | uint16(lo)
		z.tStates += 3
	case 0xE9: // JP (IX)
		z.PC = *ix
	case 0xF9: // LD SP,IX
		z.SP = *ix
		z.tStates += 2
	case 0xCB:
		z.execIndexedCB(ix)
	case 0x7E, 0x46, 0x4E, 0x56, 0x5E, 0x66, 0x6E: // LD r,(IX+d)
		_, v := readIndexed()
		z.setReg8((op>>3)&7, v)
	case 0x77, 0x70, 0x71, 0x72, 0x73, 0x74, 0x75: // LD (IX+d),r
		d := int8(z.fetchByte())
		addr := uint16(int32(*ix) + int32(d))
		z.tStates += 5
		z.writeByte(addr, z.reg8(op&7))
	case 0x86, 0x8E, 0x96, 0x9E, 0xA6, 0xAE, 0xB6, 0xBE: // ALU A,(IX+d)
		_, v := readIndexed()
		z.applyALU((op>>3)&7, v)
	case 0x26: // LD IXH,n (undocumented)
		n := z.fetchByte()
		*ix = (*ix &^ 0xFF00) | uint16(n)<<8
	case 0x2E: // LD IXL,n (undocumented)
		n := z.fetchByte()
		*ix = (*ix &^ 0x00FF) | uint16(n)
	case 0x24: // INC IXH
		*ix = (*ix &^ 0xFF00) | uint16(z.incReg(byte(*ix>>8)))<<8
	case 0x25: // DEC IXH
		*ix = (*ix &^ 0xFF00) | uint16(z.decReg(byte(*ix>>8)))<<8
	case 0x2C: // INC IXL
		*ix = (*ix &^ 0x00FF) | uint16(z.incReg(byte(*ix)))
	case 0x2D: // DEC IXL
		*ix = (*ix &^ 0x00FF) | uint16(z.decReg(byte(*ix)))
	default:
		z.execIndexedFallback(op, ix, readIndexed)
	}
}

// execIndexedFallback handles the remaining LD r,r'/ALU r opcodes where r
// or r' is H, L, or (HL); under a DD/FD prefix these address IXH/IXL (or
// IYH/IYL) and (IX+d)/(IY+d) respectively. Opcodes not referencing H, L,
// or (HL) at all behave identically to their unprefixed form and are
// simply re-dispatched through execBase.
func (z *Z80) execIndexedFallback(op byte, ix *uint16, readIndexed func() (uint16, byte)) {
	x := op >> 6
	y := (op >> 3) & 7
	zz := op & 7

	usesIndexed := func(idx byte) bool { return idx == 4 || idx == 5 || idx == 6 }

	if x == 1 && !(y == 6 && zz == 6) {
		if !usesIndexed(y) && !usesIndexed(zz) {
			z.execBase(op)
			return
		}
		var v byte
		if zz == 6 {
			_, v = readIndexed()
		} else if zz == 4 {
			v = byte(*ix >> 8)
		} else if zz == 5 {
			v = byte(*ix)
		} else {
			v = z.reg8(zz)
		}
		if y == 6 {
			addr, _ := readIndexed()
			z.writeByte(addr, v)
		} else if y == 4 {
			*ix = (*ix &^ 0xFF00) | uint16(v)<<8
		} else if y == 5 {
			*ix = (*ix &^ 0x00FF) | uint16(v)
		} else {
			z.setReg8(y, v)
		}
		return
	}

	if x == 2 {
		var v byte
		if zz == 6 {
			_, v = readIndexed()
		} else if zz == 4 {
			v = byte(*ix >> 8)
		} else if zz == 5 {
			v = byte(*ix)
		} else {
			z.execBase(op)
			return
		}
		z.applyALU(y, v)
		return
	}

	z.execBase(op)
}

// execIndexedCB handles the DDCB/FDCB group: a displacement byte, then an
// opcode byte, operating on (ix+d) with the result optionally copied into
// an 8-bit register (the undocumented "shift-and-store" forms).
func (z *Z80) execIndexedCB(ix *uint16) {
	d := int8(z.fetchByte())
	op := z.fetchByte()
	addr := uint16(int32(*ix) + int32(d))
	z.tStates += 3

	x := op >> 6
	y := (op >> 3) & 7
	zz := op & 7

	v := z.readByte(addr)
	switch x {
	case 0:
		r := z.rotShift(y, v)
		z.writeByte(addr, r)
		if zz != 6 {
			z.setReg8(zz, r)
		}
	case 1:
		mask := byte(1) << y
		f := (z.F & FlagC) | FlagH
		if v&mask == 0 {
			f |= FlagZ | FlagPV
		}
		f |= byte(addr>>8) & (FlagY | FlagX)
		z.F = f
	case 2:
		r := v &^ (1 << y)
		z.writeByte(addr, r)
		if zz != 6 {
			z.setReg8(zz, r)
		}
	default:
		r := v | (1 << y)
		z.writeByte(addr, r)
		if zz != 6 {
			z.setReg8(zz, r)
		}
	}
}
