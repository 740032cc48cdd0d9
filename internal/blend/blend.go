// Package blend implements premultiplied-alpha compositing for chunk
// surfaces.
//
// All functions work on premultiplied 8-bit channels, the layout of
// image.RGBA. The member blend modes follow the W3C Compositing and Blending
// Level 1 formulas; the Porter-Duff helpers back masks, clipping and erasing.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import "github.com/gogpu/pixdoc"

// Func is the signature for blend operations.
// All values are premultiplied alpha, 0-255.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// funcs is indexed by pixdoc.BlendMode.
var funcs = [...]Func{
	pixdoc.BlendNormal:     SourceOver,
	pixdoc.BlendMultiply:   blendMultiply,
	pixdoc.BlendScreen:     blendScreen,
	pixdoc.BlendOverlay:    blendOverlay,
	pixdoc.BlendDarken:     blendDarken,
	pixdoc.BlendLighten:    blendLighten,
	pixdoc.BlendColorDodge: blendColorDodge,
	pixdoc.BlendColorBurn:  blendColorBurn,
	pixdoc.BlendHardLight:  blendHardLight,
	pixdoc.BlendSoftLight:  blendSoftLight,
	pixdoc.BlendDifference: blendDifference,
	pixdoc.BlendExclusion:  blendExclusion,
	pixdoc.BlendHue:        blendHue,
	pixdoc.BlendSaturation: blendSaturation,
	pixdoc.BlendColor:      blendColor,
	pixdoc.BlendLuminosity: blendLuminosity,
}

// Get returns the blend function for the given mode.
// Unknown modes fall back to SourceOver.
func Get(mode pixdoc.BlendMode) Func {
	if int(mode) < len(funcs) && funcs[mode] != nil {
		return funcs[mode]
	}
	return SourceOver
}

// SourceOver composites source over destination.
// Formula: S + D * (1 - Sa)
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	invSa := 255 - sa
	return addClamp(sr, mulDiv255(dr, invSa)),
		addClamp(sg, mulDiv255(dg, invSa)),
		addClamp(sb, mulDiv255(db, invSa)),
		addClamp(sa, mulDiv255(da, invSa))
}

// Source replaces destination with source.
func Source(sr, sg, sb, sa, _, _, _, _ byte) (byte, byte, byte, byte) {
	return sr, sg, sb, sa
}

// DestinationIn keeps destination where source is opaque.
// Formula: D * Sa
func DestinationIn(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(dr, sa), mulDiv255(dg, sa), mulDiv255(db, sa), mulDiv255(da, sa)
}

// DestinationOut keeps destination where source is transparent.
// Formula: D * (1 - Sa)
func DestinationOut(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return mulDiv255(dr, invSa), mulDiv255(dg, invSa), mulDiv255(db, invSa), mulDiv255(da, invSa)
}
