package memprobe

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ScanType identifies one of the ten scalar variants a scan can search for.
type ScanType int

const (
	TypeU8 ScanType = iota
	TypeU16
	TypeU32
	TypeU64
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeF32
	TypeF64
)

// Size returns the fixed byte width of the type.
func (t ScanType) Size() int {
	switch t {
	case TypeU8, TypeI8:
		return 1
	case TypeU16, TypeI16:
		return 2
	case TypeU32, TypeI32, TypeF32:
		return 4
	case TypeU64, TypeI64, TypeF64:
		return 8
	default:
		return 0
	}
}

func (t ScanType) String() string {
	switch t {
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeU32:
		return "u32"
	case TypeU64:
		return "u64"
	case TypeI8:
		return "i8"
	case TypeI16:
		return "i16"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Op is the comparison operator applied during a scan or a refinement.
type Op int

const (
	OpEqual Op = iota
	OpGreaterEq
	OpLessEq
	OpApprox
	OpUnchanged
)

// approxEpsilon bounds OpApprox's "close enough" test. The original tool
// used about 1.0 (its `about`/`~` command searched [v-1, v+1]); we keep
// that value, and the CLI's `about`/`~` command calls OpApprox directly.
const approxEpsilon = 1.0

// Value is a tagged scalar: exactly one of the ten ScanType variants,
// carried as its little-endian byte encoding plus the type tag. Building
// one from the wrong constructor-or-type combination is a compile error,
// not a runtime mismatch the way a C varargs call would be.
type Value struct {
	typ ScanType
	raw [8]byte
}

func NewU8(v uint8) Value   { return Value{typ: TypeU8, raw: [8]byte{v}} }
func NewI8(v int8) Value    { return Value{typ: TypeI8, raw: [8]byte{byte(v)}} }
func NewU16(v uint16) Value { return encodeUint(TypeU16, uint64(v)) }
func NewI16(v int16) Value  { return encodeUint(TypeI16, uint64(uint16(v))) }
func NewU32(v uint32) Value { return encodeUint(TypeU32, uint64(v)) }
func NewI32(v int32) Value  { return encodeUint(TypeI32, uint64(uint32(v))) }
func NewU64(v uint64) Value { return encodeUint(TypeU64, v) }
func NewI64(v int64) Value  { return encodeUint(TypeI64, uint64(v)) }

func NewF32(v float32) Value { return encodeUint(TypeF32, uint64(math.Float32bits(v))) }
func NewF64(v float64) Value { return encodeUint(TypeF64, math.Float64bits(v)) }

func encodeUint(t ScanType, bits uint64) Value {
	var v Value
	v.typ = t
	binary.LittleEndian.PutUint64(v.raw[:], bits)
	return v
}

// Type reports the value's scan type.
func (v Value) Type() ScanType { return v.typ }

// Encode returns the value's little-endian byte representation, sized to
// the type's width.
func (v Value) Encode() []byte {
	b := make([]byte, v.typ.Size())
	copy(b, v.raw[:])
	return b
}

// Float returns a float64 preview of the value irrespective of the
// underlying type, used for printing.
func (v Value) Float() float64 {
	switch v.typ {
	case TypeF32:
		return float64(math.Float32frombits(uint32(binary.LittleEndian.Uint32(v.raw[:4]))))
	case TypeF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(v.raw[:8]))
	case TypeI8:
		return float64(int8(v.raw[0]))
	case TypeI16:
		return float64(int16(binary.LittleEndian.Uint16(v.raw[:2])))
	case TypeI32:
		return float64(int32(binary.LittleEndian.Uint32(v.raw[:4])))
	case TypeI64:
		return float64(int64(binary.LittleEndian.Uint64(v.raw[:8])))
	case TypeU8:
		return float64(v.raw[0])
	case TypeU16:
		return float64(binary.LittleEndian.Uint16(v.raw[:2]))
	case TypeU32:
		return float64(binary.LittleEndian.Uint32(v.raw[:4]))
	case TypeU64:
		return float64(binary.LittleEndian.Uint64(v.raw[:8]))
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeF32, TypeF64:
		return fmt.Sprintf("%f", v.Float())
	default:
		return fmt.Sprintf("%d", int64(v.Float()))
	}
}

// DecodeValue interprets raw bytes (at least Size(t) long) as a Value of
// the given type.
func DecodeValue(t ScanType, b []byte) (Value, error) {
	size := t.Size()
	if len(b) < size {
		return Value{}, fmt.Errorf("%w: need %d bytes, got %d", ErrInput, size, len(b))
	}
	var v Value
	v.typ = t
	copy(v.raw[:size], b[:size])
	return v, nil
}

// Compare applies op to the byte-encoded values a and b, both exactly
// size(t) bytes (b may be nil/empty for OpUnchanged, which ignores it).
//
// EQUAL is byte-identity for integers and float == for floats (so NaN
// never equals itself, matching IEEE 754 semantics). GREATER_EQ/LESS_EQ
// perform typed arithmetic comparison using the scan type's signedness.
// APPROX is |a-b| <= approxEpsilon for floats. UNCHANGED always holds.
func Compare(t ScanType, op Op, a, b []byte) (bool, error) {
	if op == OpUnchanged {
		return true, nil
	}
	size := t.Size()
	if len(a) < size || (b != nil && len(b) < size) {
		return false, fmt.Errorf("%w: short comparison buffer", ErrInput)
	}

	switch t {
	case TypeF32, TypeF64:
		av, bv := floatOf(t, a), floatOf(t, b)
		switch op {
		case OpEqual:
			return av == bv, nil
		case OpGreaterEq:
			return av >= bv, nil
		case OpLessEq:
			return av <= bv, nil
		case OpApprox:
			return math.Abs(av-bv) <= approxEpsilon, nil
		}
		return false, fmt.Errorf("%w: unsupported op for float type", ErrInput)
	default:
		if isSigned(t) {
			av, bv := signedOf(t, a), signedOf(t, b)
			switch op {
			case OpEqual:
				return av == bv, nil
			case OpGreaterEq:
				return av >= bv, nil
			case OpLessEq:
				return av <= bv, nil
			case OpApprox:
				d := av - bv
				if d < 0 {
					d = -d
				}
				return d <= int64(approxEpsilon), nil
			}
		} else {
			av, bv := unsignedOf(t, a), unsignedOf(t, b)
			switch op {
			case OpEqual:
				return av == bv, nil
			case OpGreaterEq:
				return av >= bv, nil
			case OpLessEq:
				return av <= bv, nil
			case OpApprox:
				var d uint64
				if av > bv {
					d = av - bv
				} else {
					d = bv - av
				}
				return d <= uint64(approxEpsilon), nil
			}
		}
		return false, fmt.Errorf("%w: unsupported op", ErrInput)
	}
}

func isSigned(t ScanType) bool {
	switch t {
	case TypeI8, TypeI16, TypeI32, TypeI64:
		return true
	default:
		return false
	}
}

func floatOf(t ScanType, b []byte) float64 {
	switch t {
	case TypeF32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
}

func unsignedOf(t ScanType, b []byte) uint64 {
	switch t {
	case TypeU8:
		return uint64(b[0])
	case TypeU16:
		return uint64(binary.LittleEndian.Uint16(b))
	case TypeU32:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func signedOf(t ScanType, b []byte) int64 {
	switch t {
	case TypeI8:
		return int64(int8(b[0]))
	case TypeI16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case TypeI32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}
