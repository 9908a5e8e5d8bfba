package ir

import (
	"strconv"
	"strings"
	"sync"
)

// BaseType represents the scalar base kinds a type can be built from.
type BaseType uint8

const (
	BaseBool BaseType = iota
	BaseInt
	BaseUint
	BaseFloat
)

// String returns the base type name.
func (b BaseType) String() string {
	switch b {
	case BaseBool:
		return "bool"
	case BaseInt:
		return "int"
	case BaseUint:
		return "uint"
	case BaseFloat:
		return "float"
	}
	return "invalid"
}

// Type represents an interned shader type. Types are deduplicated by
// structure, so two *Type values are structurally equal exactly when
// they are pointer-equal.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents a single scalar value.
type ScalarType struct {
	Base BaseType
	Bits uint8 // width in bits
}

func (ScalarType) typeInner() {}

// VectorType represents a vector of 2-4 scalars.
type VectorType struct {
	Scalar ScalarType
	Size   uint8
}

func (VectorType) typeInner() {}

// MatrixType represents a column-major matrix of float scalars.
type MatrixType struct {
	Scalar  ScalarType
	Columns uint8
	Rows    uint8
}

func (MatrixType) typeInner() {}

// ArrayType represents a fixed-length array.
type ArrayType struct {
	Elem   *Type
	Length uint32
	Stride uint32 // byte stride between elements, 0 if unknown
}

func (ArrayType) typeInner() {}

// StructField is one member of a StructType.
type StructField struct {
	Name   string
	Type   *Type
	Offset uint32
}

// StructType represents an ordered field aggregate.
type StructType struct {
	Fields []StructField
}

func (StructType) typeInner() {}

// SamplerType represents a combined texture/sampler binding type.
type SamplerType struct {
	Dim    SamplerDim
	Array  bool
	Shadow bool
}

func (SamplerType) typeInner() {}

// ImageType represents a storage image binding type.
type ImageType struct {
	Dim   SamplerDim
	Array bool
	Base  BaseType // sampled/texel base type
}

func (ImageType) typeInner() {}

// ---------------------------------------------------------------------------
// Interning
// ---------------------------------------------------------------------------

// typeTable interns types by structural key so that pointer identity
// implies structural identity, mirroring glsl_type singleton semantics.
// It is append-only and shared process-wide.
var typeTable = struct {
	mu    sync.Mutex
	types map[string]*Type
}{types: make(map[string]*Type, 64)}

func intern(name string, inner TypeInner) *Type {
	key := typeKey(name, inner)
	typeTable.mu.Lock()
	defer typeTable.mu.Unlock()
	if t, ok := typeTable.types[key]; ok {
		return t
	}
	t := &Type{Name: name, Inner: inner}
	typeTable.types[key] = t
	return t
}

// typeKey builds a unique structural key for a type. Struct names
// participate in identity; all other type names are derived.
func typeKey(name string, inner TypeInner) string {
	var b strings.Builder
	appendTypeKey(&b, name, inner)
	return b.String()
}

func appendTypeKey(b *strings.Builder, name string, inner TypeInner) {
	switch t := inner.(type) {
	case ScalarType:
		b.WriteString("s:")
		b.WriteString(strconv.Itoa(int(t.Base)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(t.Bits)))
	case VectorType:
		b.WriteString("v:")
		b.WriteString(strconv.Itoa(int(t.Size)))
		b.WriteByte(':')
		appendTypeKey(b, "", t.Scalar)
	case MatrixType:
		b.WriteString("m:")
		b.WriteString(strconv.Itoa(int(t.Columns)))
		b.WriteByte('x')
		b.WriteString(strconv.Itoa(int(t.Rows)))
		b.WriteByte(':')
		appendTypeKey(b, "", t.Scalar)
	case ArrayType:
		b.WriteString("a:")
		b.WriteString(strconv.FormatUint(uint64(t.Length), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(t.Stride), 10))
		b.WriteByte(':')
		appendTypeKey(b, t.Elem.Name, t.Elem.Inner)
	case StructType:
		b.WriteString("st:")
		b.WriteString(name)
		for _, f := range t.Fields {
			b.WriteByte(';')
			b.WriteString(f.Name)
			b.WriteByte('@')
			b.WriteString(strconv.FormatUint(uint64(f.Offset), 10))
			b.WriteByte(':')
			appendTypeKey(b, f.Type.Name, f.Type.Inner)
		}
	case SamplerType:
		b.WriteString("sam:")
		b.WriteString(strconv.Itoa(int(t.Dim)))
		if t.Array {
			b.WriteString(":arr")
		}
		if t.Shadow {
			b.WriteString(":shd")
		}
	case ImageType:
		b.WriteString("img:")
		b.WriteString(strconv.Itoa(int(t.Dim)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(t.Base)))
		if t.Array {
			b.WriteString(":arr")
		}
	}
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// TypeScalar returns the interned scalar type for base/bits.
func TypeScalar(base BaseType, bits uint8) *Type {
	return intern("", ScalarType{Base: base, Bits: bits})
}

// TypeVector returns the interned vector type with size components.
func TypeVector(base BaseType, bits uint8, size uint8) *Type {
	return intern("", VectorType{Scalar: ScalarType{Base: base, Bits: bits}, Size: size})
}

// TypeMatrix returns the interned cols x rows float matrix type.
func TypeMatrix(bits uint8, cols, rows uint8) *Type {
	return intern("", MatrixType{Scalar: ScalarType{Base: BaseFloat, Bits: bits}, Columns: cols, Rows: rows})
}

// TypeArrayOf returns the interned array type over elem.
func TypeArrayOf(elem *Type, length uint32, stride uint32) *Type {
	return intern("", ArrayType{Elem: elem, Length: length, Stride: stride})
}

// TypeStructOf returns the interned struct type with the given name
// and fields. The name participates in identity.
func TypeStructOf(name string, fields []StructField) *Type {
	return intern(name, StructType{Fields: fields})
}

// TypeSampler returns the interned sampler type.
func TypeSampler(dim SamplerDim, array, shadow bool) *Type {
	return intern("", SamplerType{Dim: dim, Array: array, Shadow: shadow})
}

// TypeImage returns the interned image type.
func TypeImage(dim SamplerDim, array bool, base BaseType) *Type {
	return intern("", ImageType{Dim: dim, Array: array, Base: base})
}

// String returns a compact display name for the type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch inner := t.Inner.(type) {
	case ScalarType:
		return inner.Base.String() + strconv.Itoa(int(inner.Bits))
	case VectorType:
		return "vec" + strconv.Itoa(int(inner.Size)) + "<" + inner.Scalar.Base.String() + strconv.Itoa(int(inner.Scalar.Bits)) + ">"
	case MatrixType:
		return "mat" + strconv.Itoa(int(inner.Columns)) + "x" + strconv.Itoa(int(inner.Rows))
	case ArrayType:
		return inner.Elem.String() + "[" + strconv.FormatUint(uint64(inner.Length), 10) + "]"
	case StructType:
		if t.Name != "" {
			return "struct " + t.Name
		}
		return "struct"
	case SamplerType:
		return "sampler" + inner.Dim.String()
	case ImageType:
		return "image" + inner.Dim.String()
	}
	return "invalid"
}
