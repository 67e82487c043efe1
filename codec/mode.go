package codec

// Mode selects between the standalone and embedded encodings of a value.
type Mode uint8

const (
	// TopLevel is the form of a value that fills one whole argument or
	// result slot. Its length is known from the slot framing.
	TopLevel Mode = iota
	// Nested is the form of a value embedded inside another value.
	Nested
)

func (m Mode) String() string {
	switch m {
	case TopLevel:
		return "top"
	case Nested:
		return "nested"
	default:
		return "unknown"
	}
}
