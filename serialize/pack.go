package serialize

import (
	"fmt"

	"github.com/gogpu/nir/ir"
)

// Wire instruction kinds: the 4-bit discriminant in header bits 0-3.
// Renumbering breaks every existing blob.
const (
	kindAlu uint32 = iota
	kindDeref
	kindCall
	kindTex
	kindIntrinsic
	kindLoadConst
	kindUndef
	kindPhi
	kindJump
	kindParallelCopy
)

// Control-flow node tags.
const (
	cfBlock uint32 = iota
	cfIf
	cfLoop
)

// Type encoding tags.
const (
	typeScalar uint8 = iota
	typeVector
	typeMatrix
	typeArray
	typeStruct
	typeSampler
	typeImage
)

const instrKindMask = 0xf

// The destination sub-field occupies header bits 24-31.
const headerDestShift = 24

// Alu header: exact(4) no-signed-wrap(5) no-unsigned-wrap(6)
// saturate(7) writemask(8-11) op(12-20).
const (
	aluExactBit          = 1 << 4
	aluNoSignedWrapBit   = 1 << 5
	aluNoUnsignedWrapBit = 1 << 6
	aluSaturateBit       = 1 << 7
	aluWriteMaskShift    = 8
	aluWriteMaskMask     = 0xf
	aluOpShift           = 12
	aluOpMask            = 0x1ff
)

// Deref header: deref-kind(4-6) variable-mode(7-16).
const (
	derefKindShift = 4
	derefKindMask  = 0x7
	derefModeShift = 7
	derefModeMask  = 0x3ff
)

// Intrinsic header: op(4-12) quantized num-components(13-15).
const (
	intrOpShift   = 4
	intrOpMask    = 0x1ff
	intrCompShift = 13
	intrCompMask  = 0x7
)

// LoadConst / Undef header: last-component(4-7) quantized
// bit-size(8-10). These two kinds always define SSA values and carry
// no destination sub-field.
const (
	constLastCompShift = 4
	constLastCompMask  = 0xf
	constBitSizeShift  = 8
	constBitSizeMask   = 0x7
)

// Tex header: num-srcs(4-7) op(8-11) texture-array-size(12-23).
const (
	texNumSrcsShift   = 4
	texNumSrcsMask    = 0xf
	texOpShift        = 8
	texOpMask         = 0xf
	texArraySizeShift = 12
	texArraySizeMask  = 0xfff
)

// Phi header: num-srcs(4-23).
const (
	phiNumSrcsShift = 4
	phiNumSrcsMask  = 0xfffff
)

// Jump header: jump-kind(4-5).
const (
	jumpKindShift = 4
	jumpKindMask  = 0x3
)

// Tex trailing flags word: sampler-dim(0-3) dest-type(4-7)
// coord-components(8-10) is-array(11) is-shadow(12)
// new-style-shadow(13) gather-component(14-15).
const (
	texFlagDimShift       = 0
	texFlagDimMask        = 0xf
	texFlagDestTypeShift  = 4
	texFlagDestTypeMask   = 0xf
	texFlagCoordShift     = 8
	texFlagCoordMask      = 0x7
	texFlagIsArrayBit     = 1 << 11
	texFlagIsShadowBit    = 1 << 12
	texFlagNewShadowBit   = 1 << 13
	texFlagComponentShift = 14
	texFlagComponentMask  = 0x3
)

// ---------------------------------------------------------------------------
// Quantization
// ---------------------------------------------------------------------------

// encodeBitSize quantizes a bit size into three bits: 0 stays 0 (the
// absent marker), powers of two up to 64 map to log2+1. Anything else
// is a precondition violation.
func encodeBitSize(bits uint8) uint32 {
	switch bits {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	case 4:
		return 3
	case 8:
		return 4
	case 16:
		return 5
	case 32:
		return 6
	case 64:
		return 7
	}
	panic(fmt.Sprintf("nir/serialize: bit size %d is not representable", bits))
}

// decodeBitSize inverts encodeBitSize.
func decodeBitSize(enc uint32) uint8 {
	if enc > 7 {
		panic(fmt.Sprintf("nir/serialize: encoded bit size %d out of range", enc))
	}
	if enc == 0 {
		return 0
	}
	return 1 << (enc - 1)
}

// encodeComponents quantizes a component count into three bits:
// 0 through 4 map to themselves, 8 to 5, 16 to 6. Anything else is a
// precondition violation.
func encodeComponents(n uint8) uint32 {
	switch n {
	case 0, 1, 2, 3, 4:
		return uint32(n)
	case 8:
		return 5
	case 16:
		return 6
	}
	panic(fmt.Sprintf("nir/serialize: component count %d is not representable", n))
}

// decodeComponents inverts encodeComponents.
func decodeComponents(enc uint32) uint8 {
	switch enc {
	case 0, 1, 2, 3, 4:
		return uint8(enc)
	case 5:
		return 8
	case 6:
		return 16
	}
	panic(fmt.Sprintf("nir/serialize: encoded component count %d out of range", enc))
}

// ---------------------------------------------------------------------------
// Destination sub-field
// ---------------------------------------------------------------------------

// packedDest is the decoded form of the shared 8-bit destination
// sub-field: bit 0 SSA-vs-register, bit 1 name-present (SSA) or
// indirect-present (register), bits 2-4 quantized component count,
// bits 5-7 quantized bit size.
type packedDest struct {
	isSSA         bool
	flag          bool
	numComponents uint8
	bitSize       uint8
}

const (
	destSSABit    = 1 << 0
	destFlagBit   = 1 << 1
	destCompShift = 2
	destCompMask  = 0x7
	destBitsShift = 5
	destBitsMask  = 0x7
)

func packDest(pd packedDest) uint32 {
	var v uint32
	if pd.isSSA {
		v |= destSSABit
		v |= encodeComponents(pd.numComponents) << destCompShift
		v |= encodeBitSize(pd.bitSize) << destBitsShift
	}
	if pd.flag {
		v |= destFlagBit
	}
	return v
}

func unpackDest(v uint32) packedDest {
	pd := packedDest{
		isSSA: v&destSSABit != 0,
		flag:  v&destFlagBit != 0,
	}
	if pd.isSSA {
		pd.numComponents = decodeComponents((v >> destCompShift) & destCompMask)
		pd.bitSize = decodeBitSize((v >> destBitsShift) & destBitsMask)
	}
	return pd
}

// ---------------------------------------------------------------------------
// Source words
// ---------------------------------------------------------------------------

// Source word layout: bit 0 SSA-vs-register, bit 1 indirect-present
// (register case), bits 2-21 object index, bits 22-31 kind-specific
// footer.
const (
	srcSSABit      = 1 << 0
	srcIndirectBit = 1 << 1
	srcIndexShift  = 2
	srcIndexMask   = MaxObjects - 1
	srcFooterShift = 22
)

// Arithmetic operand footer: negate(22) abs(23) swizzle(24-31, four
// 2-bit lanes).
const (
	srcAluNegateBit       = 1 << 22
	srcAluAbsBit          = 1 << 23
	srcAluSwizzleShift    = 24
	srcAluSwizzleLaneMask = 0x3
)

// Texture operand footer: role tag in bits 22-26.
const (
	srcTexTypeShift = 22
	srcTexTypeMask  = 0x1f
)

func packSrcWord(isSSA, indirect bool, index, footer uint32) uint32 {
	v := footer
	if isSSA {
		v |= srcSSABit
	}
	if indirect {
		v |= srcIndirectBit
	}
	return v | index<<srcIndexShift
}

func srcWordIsSSA(w uint32) bool    { return w&srcSSABit != 0 }
func srcWordIndirect(w uint32) bool { return w&srcIndirectBit != 0 }
func srcWordIndex(w uint32) uint32  { return (w >> srcIndexShift) & srcIndexMask }

// packAluFooter packs an arithmetic operand's modifiers and swizzle
// into the source-word footer.
func packAluFooter(as *ir.AluSrc) uint32 {
	var v uint32
	if as.Negate {
		v |= srcAluNegateBit
	}
	if as.Abs {
		v |= srcAluAbsBit
	}
	for lane, sw := range as.Swizzle {
		if sw > 3 {
			panic(fmt.Sprintf("nir/serialize: swizzle component %d out of range", sw))
		}
		v |= uint32(sw) << (srcAluSwizzleShift + 2*lane)
	}
	return v
}

// unpackAluFooter fills an arithmetic operand's modifiers and swizzle
// from a source word.
func unpackAluFooter(w uint32, as *ir.AluSrc) {
	as.Negate = w&srcAluNegateBit != 0
	as.Abs = w&srcAluAbsBit != 0
	for lane := range as.Swizzle {
		as.Swizzle[lane] = uint8((w >> (srcAluSwizzleShift + 2*lane)) & srcAluSwizzleLaneMask)
	}
}

// packTexFlags packs the texture instruction's trailing flags word.
func packTexFlags(i *ir.TexInstr) uint32 {
	v := (uint32(i.SamplerDim) & texFlagDimMask) << texFlagDimShift
	v |= (uint32(i.DestType) & texFlagDestTypeMask) << texFlagDestTypeShift
	v |= (uint32(i.CoordComponents) & texFlagCoordMask) << texFlagCoordShift
	v |= (uint32(i.Component) & texFlagComponentMask) << texFlagComponentShift
	if i.IsArray {
		v |= texFlagIsArrayBit
	}
	if i.IsShadow {
		v |= texFlagIsShadowBit
	}
	if i.IsNewStyleShadow {
		v |= texFlagNewShadowBit
	}
	return v
}

// unpackTexFlags fills the texture instruction from its flags word.
func unpackTexFlags(v uint32, i *ir.TexInstr) {
	i.SamplerDim = ir.SamplerDim((v >> texFlagDimShift) & texFlagDimMask)
	i.DestType = ir.AluType((v >> texFlagDestTypeShift) & texFlagDestTypeMask)
	i.CoordComponents = uint8((v >> texFlagCoordShift) & texFlagCoordMask)
	i.Component = uint8((v >> texFlagComponentShift) & texFlagComponentMask)
	i.IsArray = v&texFlagIsArrayBit != 0
	i.IsShadow = v&texFlagIsShadowBit != 0
	i.IsNewStyleShadow = v&texFlagNewShadowBit != 0
}
