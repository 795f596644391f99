package bus

// Read services one CPU memory read and advances the bus by one M-cycle.
func (b *Bus) Read(addr uint16) byte {
	v := b.conflictOrRead(addr)
	b.runMCycle()
	return v
}

// Write services one CPU memory write and advances the bus by one M-cycle.
func (b *Bus) Write(addr uint16, v byte) {
	b.conflictOrWrite(addr, v)
	b.runMCycle()
}

// conflictOrRead applies OAM-DMA bus arbitration before falling through to
// the normal decode-and-read path.
func (b *Bus) conflictOrRead(addr uint16) byte {
	kind := b.decode(addr)
	if b.dma.active && kind == SliceOAM {
		return 0xFF
	}
	if b.dma.active && b.dma.delayM == 0 {
		srcKind := b.decode(uint16(b.dma.srcPage) << 8)
		if b.tagFor(kind) == b.tagFor(srcKind) && b.tagFor(kind) != tagInternal {
			return b.lastDMAByte
		}
	}
	return b.readByte(kind, addr)
}

func (b *Bus) conflictOrWrite(addr uint16, v byte) {
	kind := b.decode(addr)
	if b.dma.active {
		if kind == SliceOAM {
			return // OAM itself is busy being written by the transfer
		}
		srcKind := b.decode(uint16(b.dma.srcPage) << 8)
		if b.tagFor(kind) == b.tagFor(srcKind) && b.tagFor(kind) != tagInternal {
			return // conflicting CPU write is dropped
		}
	}
	b.writeByte(kind, addr, v)
}

func (b *Bus) readByte(kind SliceKind, addr uint16) byte {
	switch kind {
	case SliceBootROM:
		return b.bootROM[addr]
	case SliceCartROM:
		return b.cartridge.ReadROM(addr)
	case SliceVRAM:
		return b.ppuDev.CPURead(addr)
	case SliceCartRAM:
		return b.cartridge.ReadRAM(addr)
	case SliceWRAM:
		return b.readWRAM(addr)
	case SliceEchoRAM:
		return b.readWRAM(addr - 0x2000)
	case SliceOAM:
		return b.ppuDev.CPURead(addr)
	case SliceUnusable:
		return 0xFF
	case SliceIO:
		return b.readIO(addr)
	case SliceHRAM:
		return b.hram[addr-0xFF80]
	case SliceIE:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) writeByte(kind SliceKind, addr uint16, v byte) {
	switch kind {
	case SliceBootROM:
		// read-only
	case SliceCartROM:
		b.cartridge.WriteROM(addr, v)
	case SliceVRAM:
		b.ppuDev.CPUWrite(addr, v)
	case SliceCartRAM:
		b.cartridge.WriteRAM(addr, v)
	case SliceWRAM:
		b.writeWRAM(addr, v)
	case SliceEchoRAM:
		b.writeWRAM(addr-0x2000, v)
	case SliceOAM:
		b.ppuDev.CPUWrite(addr, v)
	case SliceUnusable:
		// no-op; the CGB OAM-corruption glitch is out of scope
	case SliceIO:
		b.writeIO(addr, v)
	case SliceHRAM:
		b.hram[addr-0xFF80] = v
	case SliceIE:
		b.ie = v & 0x1F
	}
}

// wramEffectiveBank returns the selected upper-half WRAM bank, applying
// the invariant that writing 0 to SVBK acts as bank 1.
func (b *Bus) wramEffectiveBank() int {
	if !b.cgbMode || b.wramBank == 0 {
		return 1
	}
	return int(b.wramBank)
}

func (b *Bus) readWRAM(addr uint16) byte {
	offset := addr - 0xC000
	if offset < 0x1000 {
		return b.wram[0][offset]
	}
	return b.wram[b.wramEffectiveBank()][offset-0x1000]
}

func (b *Bus) writeWRAM(addr uint16, v byte) {
	offset := addr - 0xC000
	if offset < 0x1000 {
		b.wram[0][offset] = v
		return
	}
	b.wram[b.wramEffectiveBank()][offset-0x1000] = v
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.joypadDev.Read()
	case addr == 0xFF01:
		return b.serialDev.ReadSB()
	case addr == 0xFF02:
		return b.serialDev.ReadSC()
	case addr == 0xFF04:
		return byte(b.timerDev.RawDiv() >> 8)
	case addr == 0xFF05:
		return b.timerDev.ReadTIMA()
	case addr == 0xFF06:
		return b.timerDev.ReadTMA()
	case addr == 0xFF07:
		return b.timerDev.ReadTAC()
	case addr == 0xFF0F:
		return b.ifReg | 0xE0
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apuDev.CPURead(addr)
	case addr == 0xFF46:
		return b.dmaLastPage
	case addr == 0xFF4D:
		v := byte(0x7E)
		if b.doubleSpeed {
			v |= 0x80
		}
		if b.speedSwitchArmed {
			v |= 0x01
		}
		return v
	case addr == 0xFF55:
		return b.readHDMA5()
	case addr == 0xFF70:
		if !b.cgbMode {
			return 0xFF
		}
		return b.wramBank | 0xF8
	case addr == 0xFF40 || addr == 0xFF41 || addr == 0xFF42 || addr == 0xFF43 ||
		addr == 0xFF44 || addr == 0xFF45 || addr == 0xFF47 || addr == 0xFF48 ||
		addr == 0xFF49 || addr == 0xFF4A || addr == 0xFF4B || addr == 0xFF4F ||
		addr == 0xFF68 || addr == 0xFF69 || addr == 0xFF6A || addr == 0xFF6B || addr == 0xFF6C:
		return b.ppuDev.CPURead(addr)
	default:
		return 0xFF
	}
}

func (b *Bus) writeIO(addr uint16, v byte) {
	switch {
	case addr == 0xFF00:
		b.joypadDev.Write(v)
	case addr == 0xFF01:
		b.serialDev.WriteSB(v)
	case addr == 0xFF02:
		b.serialDev.WriteSC(v)
	case addr == 0xFF04:
		b.timerDev.WriteDIV()
	case addr == 0xFF05:
		b.timerDev.WriteTIMA(v)
	case addr == 0xFF06:
		b.timerDev.WriteTMA(v)
	case addr == 0xFF07:
		b.timerDev.WriteTAC(v)
	case addr == 0xFF0F:
		b.ifReg = v & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apuDev.CPUWrite(addr, v)
	case addr == 0xFF46:
		b.dmaLastPage = v
		b.dma.start(v)
	case addr == 0xFF4D:
		if b.cgbMode {
			b.speedSwitchArmed = v&0x01 != 0
		}
	case addr == 0xFF50:
		if v != 0 {
			b.bootROMEnabled = false
		}
	case addr == 0xFF51:
		b.hdmaSrcHi = v
	case addr == 0xFF52:
		b.hdmaSrcLo = v & 0xF0
	case addr == 0xFF53:
		b.hdmaDstHi = v & 0x1F
	case addr == 0xFF54:
		b.hdmaDstLo = v & 0xF0
	case addr == 0xFF55:
		b.writeHDMA5(v)
	case addr == 0xFF70:
		if b.cgbMode {
			b.wramBank = v & 0x07
		}
	case addr == 0xFF40 || addr == 0xFF41 || addr == 0xFF42 || addr == 0xFF43 ||
		addr == 0xFF44 || addr == 0xFF45 || addr == 0xFF47 || addr == 0xFF48 ||
		addr == 0xFF49 || addr == 0xFF4A || addr == 0xFF4B || addr == 0xFF4F ||
		addr == 0xFF68 || addr == 0xFF69 || addr == 0xFF6A || addr == 0xFF6B || addr == 0xFF6C:
		b.ppuDev.CPUWrite(addr, v)
	}
}

func (b *Bus) readHDMA5() byte {
	if !b.hdma.active {
		return 0xFF
	}
	lines := byte((b.hdma.remaining/16 - 1) & 0x7F)
	return lines // bit7=0: transfer still in progress
}

func (b *Bus) writeHDMA5(v byte) {
	if b.hdma.active && b.hdma.hblankMode && v&0x80 == 0 {
		b.hdma.active = false // writing 0 to bit7 while active cancels
		return
	}
	src := uint16(b.hdmaSrcHi)<<8 | uint16(b.hdmaSrcLo)
	dst := 0x8000 | uint16(b.hdmaDstHi)<<8 | uint16(b.hdmaDstLo)
	length := (int(v&0x7F) + 1) * 16
	b.startHDMA(v&0x80 != 0, src, dst, length)
}

// TrySpeedSwitch performs the CGB speed switch requested via KEY1 if one
// is armed; called by the CPU's STOP handling. Returns whether a switch
// occurred, so STOP knows whether to resume immediately (switch) or enter
// deep-stop (no switch armed).
func (b *Bus) TrySpeedSwitch() bool {
	if !b.speedSwitchArmed {
		return false
	}
	b.doubleSpeed = !b.doubleSpeed
	b.speedSwitchArmed = false
	b.timerDev.WriteDIV()
	b.apuDev.SetDoubleSpeed(b.doubleSpeed)
	return true
}

// ResetDIV zeroes the DIV counter, the way any write to the DIV register
// does. STOP resets it unconditionally, independent of whether a CGB
// speed switch is armed.
func (b *Bus) ResetDIV() {
	b.timerDev.WriteDIV()
}
