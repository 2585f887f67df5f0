package scaler

// RGB565 channel masks. Clearing the low bit of every channel lets two
// packed pixels be halved with a single shift without bleeding between
// channels.
const (
	lowBits16  = 0x0821
	highBits16 = 0xF7DE
	lowBits32  = 0x08210821
	highBits32 = 0xF7DEF7DE
)

// Average565 returns the per-channel average of two RGB565 colors,
// rounding halves up.
func Average565(a, b uint16) uint16 {
	if a == b {
		return a
	}
	return average565(a, b)
}

func average565(a, b uint16) uint16 {
	return uint16((uint32(a) + uint32(b) + uint32((a^b)&lowBits16)) >> 1)
}

// Average565_1_3 weights b three times as heavily as a.
func Average565_1_3(a, b uint16) uint16 {
	if a == b {
		return a
	}
	return average565(average565(a, b), b)
}

// Average565x2 averages two pairs of RGB565 pixels packed into 32-bit
// words, rounding halves down.
func Average565x2(a, b uint32) uint32 {
	if a == b {
		return a
	}
	return average565x2(a, b)
}

func average565x2(a, b uint32) uint32 {
	return (a&highBits32)>>1 + (b&highBits32)>>1 + (a & b & lowBits32)
}

func average565x2_1_3(a, b uint32) uint32 {
	if a == b {
		return a
	}
	return average565x2(average565x2(a, b), b)
}

// averageFloor565 is the single-pixel equivalent of one lane of
// average565x2, used for the tail of odd-width rows.
func averageFloor565(a, b uint16) uint16 {
	if a == b {
		return a
	}
	return (a&highBits16)>>1 + (b&highBits16)>>1 + (a & b & lowBits16)
}

func averageFloor565_1_3(a, b uint16) uint16 {
	if a == b {
		return a
	}
	return averageFloor565(averageFloor565(a, b), b)
}

// blendRows writes the average of rows a and b into dst, two pixels per
// 32-bit word. With weighted set, b counts three times as heavily as a.
func blendRows(dst, a, b []uint16, weighted bool) {
	n := len(dst)
	pairs := n &^ 1
	i := 0
	if weighted {
		for ; i < pairs; i += 2 {
			w := average565x2_1_3(pack(a[i], a[i+1]), pack(b[i], b[i+1]))
			dst[i], dst[i+1] = uint16(w), uint16(w>>16)
		}
		if i < n {
			dst[i] = averageFloor565_1_3(a[i], b[i])
		}
		return
	}
	for ; i < pairs; i += 2 {
		w := Average565x2(pack(a[i], a[i+1]), pack(b[i], b[i+1]))
		dst[i], dst[i+1] = uint16(w), uint16(w>>16)
	}
	if i < n {
		dst[i] = averageFloor565(a[i], b[i])
	}
}

func pack(lo, hi uint16) uint32 {
	return uint32(lo) | uint32(hi)<<16
}

// RGB565ToRGBA expands RGB565 pixels into opaque 8-bit RGBA. dst must
// hold at least 4*len(src) bytes.
func RGB565ToRGBA(dst []byte, src []uint16) {
	if len(src) == 0 {
		return
	}
	_ = dst[len(src)*4-1]
	for i, p := range src {
		r := uint8(p >> 11 & 0x1F)
		g := uint8(p >> 5 & 0x3F)
		b := uint8(p & 0x1F)
		o := i * 4
		dst[o] = r<<3 | r>>2
		dst[o+1] = g<<2 | g>>4
		dst[o+2] = b<<3 | b>>2
		dst[o+3] = 0xFF
	}
}

// RGB565 packs 8-bit channels into a RGB565 value.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}
