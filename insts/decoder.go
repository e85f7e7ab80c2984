package insts

// candidateIndex maps bits 27:20 and 7:4 of a word to a 12-bit slot.
func candidateIndex(word uint32) int {
	return int(word>>16&0xFF0 | word>>4&0xF)
}

const indexMask = 0x0FF000F0

// Decoder decodes ARM and Thumb instruction words into identities.
//
// A Decoder is immutable once built and safe for concurrent reads.
type Decoder struct {
	entries    [NumSpecs]Entry
	candidates [4096][]Spec

	thumbEntries    [NumThumbSpecs]Entry
	thumbCandidates [256][]ThumbSpec
}

// NewDecoder creates a decoder, building both decode tables.
func NewDecoder() *Decoder {
	d := &Decoder{}

	for i := range d.entries {
		d.entries[i] = entryFor(Spec(i))
	}

	order := priorityOrder()
	for slot := range d.candidates {
		word := uint32(slot>>4)<<20 | uint32(slot&0xF)<<4
		for _, s := range order {
			e := d.entries[s]
			if word&e.Mask&indexMask == e.Opcode&indexMask {
				d.candidates[slot] = append(d.candidates[slot], s)
			}
		}
	}

	d.buildThumb()

	return d
}

// Decode returns the identity of a 32-bit ARM instruction word, or
// SpecUndefined if no entry matches. The condition field is ignored.
func (d *Decoder) Decode(word uint32) Spec {
	for _, s := range d.candidates[candidateIndex(word)] {
		if d.entries[s].Matches(word) {
			return s
		}
	}
	return SpecUndefined
}

// Entry returns the decode table entry of an identity.
func (d *Decoder) Entry(s Spec) Entry {
	if !s.Valid() {
		return undefinedEntry
	}
	return d.entries[s]
}

// Candidates returns the identities the decoder tries, in order, for words
// sharing bits 27:20 and 7:4 with word.
func (d *Decoder) Candidates(word uint32) []Spec {
	c := d.candidates[candidateIndex(word)]
	out := make([]Spec, len(c))
	copy(out, c)
	return out
}
