package ir

// TexOp identifies a texture sampling operation. The codec packs the
// op into four bits, bounding the set at sixteen.
type TexOp uint8

const (
	TexOpTex TexOp = iota // sample with implicit LOD
	TexOpTxb              // sample with LOD bias
	TexOpTxl              // sample with explicit LOD
	TexOpTxd              // sample with explicit derivatives
	TexOpTxf              // texel fetch
	TexOpTxfMs            // multisample texel fetch
	TexOpTxs              // texture size query
	TexOpLod              // LOD query
	TexOpTg4              // textureGather
	TexOpQueryLevels
	TexOpTextureSamples

	texOpCount
)

// NumTexOps is the number of defined texture operations.
const NumTexOps = uint8(texOpCount)

// String returns the op mnemonic.
func (op TexOp) String() string {
	switch op {
	case TexOpTex:
		return "tex"
	case TexOpTxb:
		return "txb"
	case TexOpTxl:
		return "txl"
	case TexOpTxd:
		return "txd"
	case TexOpTxf:
		return "txf"
	case TexOpTxfMs:
		return "txf_ms"
	case TexOpTxs:
		return "txs"
	case TexOpLod:
		return "lod"
	case TexOpTg4:
		return "tg4"
	case TexOpQueryLevels:
		return "query_levels"
	case TexOpTextureSamples:
		return "texture_samples"
	}
	return "unknown"
}

// TexSrcType tags the role of a texture operand. The codec packs the
// tag into five bits.
type TexSrcType uint8

const (
	TexSrcCoord TexSrcType = iota
	TexSrcProjector
	TexSrcComparator
	TexSrcOffset
	TexSrcBias
	TexSrcLod
	TexSrcMinLod
	TexSrcMsIndex
	TexSrcTextureDeref
	TexSrcSamplerDeref
	TexSrcTextureOffset
	TexSrcSamplerOffset
	TexSrcPlane
	TexSrcDdx
	TexSrcDdy

	texSrcTypeCount
)

// NumTexSrcTypes is the number of defined texture operand roles.
const NumTexSrcTypes = uint8(texSrcTypeCount)

// String returns the operand role name.
func (t TexSrcType) String() string {
	switch t {
	case TexSrcCoord:
		return "coord"
	case TexSrcProjector:
		return "projector"
	case TexSrcComparator:
		return "comparator"
	case TexSrcOffset:
		return "offset"
	case TexSrcBias:
		return "bias"
	case TexSrcLod:
		return "lod"
	case TexSrcMinLod:
		return "min_lod"
	case TexSrcMsIndex:
		return "ms_index"
	case TexSrcTextureDeref:
		return "texture_deref"
	case TexSrcSamplerDeref:
		return "sampler_deref"
	case TexSrcTextureOffset:
		return "texture_offset"
	case TexSrcSamplerOffset:
		return "sampler_offset"
	case TexSrcPlane:
		return "plane"
	case TexSrcDdx:
		return "ddx"
	case TexSrcDdy:
		return "ddy"
	}
	return "unknown"
}

// SamplerDim is the dimensionality of a texture binding.
type SamplerDim uint8

const (
	SamplerDim1D SamplerDim = iota
	SamplerDim2D
	SamplerDim3D
	SamplerDimCube
	SamplerDimRect
	SamplerDimBuf
	SamplerDimMs
	SamplerDimExternal
	SamplerDimSubpass
	SamplerDimSubpassMs
)

// String returns the dimension suffix.
func (d SamplerDim) String() string {
	switch d {
	case SamplerDim1D:
		return "1D"
	case SamplerDim2D:
		return "2D"
	case SamplerDim3D:
		return "3D"
	case SamplerDimCube:
		return "Cube"
	case SamplerDimRect:
		return "Rect"
	case SamplerDimBuf:
		return "Buf"
	case SamplerDimMs:
		return "MS"
	case SamplerDimExternal:
		return "External"
	case SamplerDimSubpass:
		return "Subpass"
	case SamplerDimSubpassMs:
		return "SubpassMS"
	}
	return "unknown"
}

// AluType is a numeric type tag carried by texture destinations.
type AluType uint8

const (
	TypeInvalid AluType = iota
	TypeFloat16
	TypeFloat32
	TypeFloat64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeBool1
	TypeBool32
)

// String returns the type tag name.
func (t AluType) String() string {
	switch t {
	case TypeFloat16:
		return "float16"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeBool1:
		return "bool1"
	case TypeBool32:
		return "bool32"
	}
	return "invalid"
}
