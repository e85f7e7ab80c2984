package emu

import (
	"math/bits"

	"github.com/sarchlab/arm7sim/bitfield"
)

// blockTransfer binds LDM and STM in all four addressing modes.
//
// Registers move lowest-numbered to lowest address. An empty register list
// transfers r15 alone and moves the base by 0x40. STM writes the base back
// after its first transfer, so a base that is not the lowest listed register
// is stored updated. LDM writes back before loading, so a loaded base wins.
// With the S bit, LDM including r15 restores the CPSR from the SPSR; any
// other form transfers the User bank.
func blockTransfer(load bool) Handler {
	return func(c *CPU, word uint32) error {
		pre := bitfield.Bit(word, 24)
		up := bitfield.Bit(word, 23)
		sBit := bitfield.Bit(word, 22)
		writeBack := bitfield.Bit(word, 21) && bitfield.Range(word, 19, 16) != RegPC
		rn := int(bitfield.Range(word, 19, 16))
		list := bitfield.Range(word, 15, 0)

		span := uint32(bits.OnesCount32(list)) * 4
		if list == 0 {
			list = 1 << RegPC
			span = 0x40
		}

		base := c.regs.Get(rn)
		var start, final uint32
		if up {
			final = base + span
			start = base
			if pre {
				start += 4
			}
		} else {
			final = base - span
			start = final
			if !pre {
				start += 4
			}
		}

		loadsPC := load && bitfield.Bit(list, RegPC)
		userBank := sBit && !loadsPC
		restore := sBit && loadsPC

		addr := start
		if load {
			if writeBack {
				c.regs.Set(rn, final)
			}
			for i := 0; i < 16; i++ {
				if !bitfield.Bit(list, uint(i)) {
					continue
				}
				v := c.load(addr&^3, Word)
				addr += 4

				switch {
				case i == RegPC:
					if restore {
						c.restoreCPSR()
					}
					c.branch(v)
				case userBank:
					c.regs.SetUser(i, v)
				default:
					c.regs.Set(i, v)
				}
			}
			c.internal(1)
			return nil
		}

		first := true
		for i := 0; i < 16; i++ {
			if !bitfield.Bit(list, uint(i)) {
				continue
			}
			var v uint32
			switch {
			case i == RegPC:
				v = c.readReg(RegPC, 4)
			case userBank:
				v = c.regs.GetUser(i)
			default:
				v = c.regs.Get(i)
			}
			c.store(addr&^3, Word, v)
			addr += 4

			if first && writeBack {
				c.regs.Set(rn, final)
			}
			first = false
		}
		return nil
	}
}
