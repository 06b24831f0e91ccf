package column

import "fmt"

// Kind is the physical type of a column. The values match the ORC type kinds
// so they can be written to the file footer as-is.
type Kind uint8

const (
	Byte   Kind = 1
	Short  Kind = 2
	Int    Kind = 3
	Long   Kind = 4
	String Kind = 7
)

// Width returns the value size in bytes, or 0 for variable-length kinds.
func (k Kind) Width() int {
	switch k {
	case Byte:
		return 1
	case Short:
		return 2
	case Int:
		return 4
	case Long:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k is a supported column kind.
func (k Kind) Valid() bool {
	return k == String || k.Width() > 0
}

func (k Kind) String() string {
	switch k {
	case Byte:
		return "int8"
	case Short:
		return "int16"
	case Int:
		return "int32"
	case Long:
		return "int64"
	case String:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{Byte, Short, Int, Long, String} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
