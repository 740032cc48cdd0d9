package blend

import "math"

// Non-separable blend modes (Hue, Saturation, Color, Luminosity) per
// W3C Compositing and Blending Level 1, section 8. They operate on the
// whole RGB triplet, so they unpremultiply into float space first.

func lum(r, g, b float32) float32 {
	return 0.30*r + 0.59*g + 0.11*b
}

func sat(r, g, b float32) float32 {
	return max(r, g, b) - min(r, g, b)
}

// clipColor brings components back into [0, 1] while preserving luminance.
func clipColor(r, g, b float32) (float32, float32, float32) {
	l := lum(r, g, b)
	n := min(r, g, b)
	x := max(r, g, b)
	if n < 0 {
		r = l + (r-l)*l/(l-n)
		g = l + (g-l)*l/(l-n)
		b = l + (b-l)*l/(l-n)
	}
	if x > 1 {
		r = l + (r-l)*(1-l)/(x-l)
		g = l + (g-l)*(1-l)/(x-l)
		b = l + (b-l)*(1-l)/(x-l)
	}
	return r, g, b
}

func setLum(r, g, b, l float32) (float32, float32, float32) {
	d := l - lum(r, g, b)
	return clipColor(r+d, g+d, b+d)
}

func setSat(r, g, b, s float32) (float32, float32, float32) {
	c := [3]*float32{&r, &g, &b}
	// order so that *c[0] <= *c[1] <= *c[2]
	if *c[0] > *c[1] {
		c[0], c[1] = c[1], c[0]
	}
	if *c[1] > *c[2] {
		c[1], c[2] = c[2], c[1]
	}
	if *c[0] > *c[1] {
		c[0], c[1] = c[1], c[0]
	}
	lo, mid, hi := *c[0], *c[1], *c[2]
	if hi > lo {
		*c[1] = (mid - lo) * s / (hi - lo)
		*c[2] = s
	} else {
		*c[1], *c[2] = 0, 0
	}
	*c[0] = 0
	return r, g, b
}

func blendHue(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
		r, g, b := setSat(sr, sg, sb, sat(dr, dg, db))
		return setLum(r, g, b, lum(dr, dg, db))
	})
}

func blendSaturation(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
		r, g, b := setSat(dr, dg, db, sat(sr, sg, sb))
		return setLum(r, g, b, lum(dr, dg, db))
	})
}

func blendColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
		return setLum(sr, sg, sb, lum(dr, dg, db))
	})
}

func blendLuminosity(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32) {
		return setLum(dr, dg, db, lum(sr, sg, sb))
	})
}

func nonSeparable(
	sr, sg, sb, sa, dr, dg, db, da byte,
	b func(sr, sg, sb, dr, dg, db float32) (float32, float32, float32),
) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	fs, fd := float32(sa), float32(da)
	br, bg, bb := b(float32(sr)/fs, float32(sg)/fs, float32(sb)/fs, float32(dr)/fd, float32(dg)/fd, float32(db)/fd)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := fs * fd / 255

	channel := func(s, d byte, bl float32) byte {
		v := addClamp(mulDiv255(d, invSa), mulDiv255(s, invDa))
		contrib := math.Round(float64(max(0, min(1, bl)) * saDa))
		return addClamp(v, byte(contrib))
	}

	return channel(sr, dr, br), channel(sg, dg, bg), channel(sb, db, bb),
		addClamp(sa, mulDiv255(da, invSa))
}
