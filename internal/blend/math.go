package blend

// mulDiv255 multiplies two bytes and divides by 255 with rounding.
// Formula: (a * b + 127) / 255
//
// Exact rounding keeps a*255/255 == a, which the compositor relies on:
// an opaque layer reproduces itself and a zero-opacity layer leaves the
// background untouched.
func mulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 127) / 255)
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

// scaleByte scales a channel by an opacity factor in [0, 256].
func scaleByte(v byte, factor uint16) byte {
	return byte((uint32(v)*uint32(factor) + 128) >> 8)
}
