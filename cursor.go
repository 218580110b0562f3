package winloop

import "fmt"

// CursorShape selects one of the supported native cursor resources.
type CursorShape int

const (
	// CursorPointer is the default arrow cursor.
	CursorPointer CursorShape = iota
	// CursorHand2 is the pointing-hand cursor, named after the X cursor
	// font glyph it maps to.
	CursorHand2
)

func (s CursorShape) String() string {
	switch s {
	case CursorPointer:
		return "pointer"
	case CursorHand2:
		return "hand2"
	default:
		return fmt.Sprintf("CursorShape(%d)", int(s))
	}
}

// ParseCursorShape resolves a shape name as used in configuration files.
func ParseCursorShape(name string) (CursorShape, error) {
	switch name {
	case "pointer":
		return CursorPointer, nil
	case "hand2":
		return CursorHand2, nil
	default:
		return 0, fmt.Errorf("unknown cursor shape %q", name)
	}
}
