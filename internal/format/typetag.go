package format

import "github.com/balsa-rf/balsa/internal/balsaerr"

// TypeTag is one of the nine 4-byte scalar type tags the format
// supports, or the string type tag used for dictionary string values.
type TypeTag string

const (
	TagUint8   TypeTag = "ui08"
	TagUint16  TypeTag = "ui16"
	TagUint32  TypeTag = "ui32"
	TagInt8    TypeTag = "in08"
	TagInt16   TypeTag = "in16"
	TagInt32   TypeTag = "in32"
	TagFloat32 TypeTag = "fl32"
	TagFloat64 TypeTag = "fl64"
	TagBool    TypeTag = "bool"
	TagString  TypeTag = "strn"
)

// byteSize returns the fixed on-disk size of one scalar of this type,
// or -1 for the variable-length string tag.
func (t TypeTag) byteSize() int {
	switch t {
	case TagUint8, TagInt8, TagBool:
		return 1
	case TagUint16, TagInt16:
		return 2
	case TagUint32, TagInt32, TagFloat32:
		return 4
	case TagFloat64:
		return 8
	default:
		return -1
	}
}

func validateTypeTag(t TypeTag) error {
	switch t {
	case TagUint8, TagUint16, TagUint32, TagInt8, TagInt16, TagInt32, TagFloat32, TagFloat64, TagBool, TagString:
		return nil
	default:
		return balsaerr.Formatf("unknown type tag %q", string(t))
	}
}

// scalarTypeTag resolves the TypeTag for a Go scalar type instantiated
// through table.Table[T]. T is always a plain alias (uint32, uint8,
// float32, float64, ...), never a distinct named type, so a dynamic
// type switch on the zero value is exact.
func scalarTypeTag[T any](zero T) (TypeTag, error) {
	switch any(zero).(type) {
	case uint8:
		return TagUint8, nil
	case uint16:
		return TagUint16, nil
	case uint32:
		return TagUint32, nil
	case int8:
		return TagInt8, nil
	case int16:
		return TagInt16, nil
	case int32:
		return TagInt32, nil
	case float32:
		return TagFloat32, nil
	case float64:
		return TagFloat64, nil
	case bool:
		return TagBool, nil
	default:
		return "", balsaerr.Internal("unsupported table scalar type")
	}
}
