package contractabi

// Memory is a guest's linear memory as seen by host functions. Accesses
// report false when the range is out of bounds.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}
