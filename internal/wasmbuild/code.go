package wasmbuild

const (
	opUnreachable = 0x00
	opBlock       = 0x02
	opLoop        = 0x03
	opEnd         = 0x0b
	opBr          = 0x0c
	opBrIf        = 0x0d
	opReturn      = 0x0f
	opCall        = 0x10
	opDrop        = 0x1a
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opI32Load8U   = 0x2d
	opI32Store8   = 0x3a
	opI32Const    = 0x41
	opIf          = 0x04
	opI32Eqz      = 0x45
	opI32Ne       = 0x47
	opI32GeS      = 0x4e
	opI32Add      = 0x6a
	opI32Sub      = 0x6b

	blockTypeEmpty = 0x40
)

// Code accumulates an instruction sequence for a function body. The final
// end opcode is added by ModuleBuilder.Build.
type Code struct {
	buf []byte
}

func NewCode() *Code {
	return &Code{}
}

func (c *Code) op(b ...byte) *Code {
	c.buf = append(c.buf, b...)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }
func (c *Code) Block() *Code       { return c.op(opBlock, blockTypeEmpty) }
func (c *Code) Loop() *Code        { return c.op(opLoop, blockTypeEmpty) }
func (c *Code) End() *Code         { return c.op(opEnd) }
func (c *Code) Return() *Code      { return c.op(opReturn) }
func (c *Code) Drop() *Code        { return c.op(opDrop) }
func (c *Code) I32Eqz() *Code      { return c.op(opI32Eqz) }
func (c *Code) I32Ne() *Code       { return c.op(opI32Ne) }
func (c *Code) I32GeS() *Code      { return c.op(opI32GeS) }
func (c *Code) I32Add() *Code      { return c.op(opI32Add) }
func (c *Code) I32Sub() *Code      { return c.op(opI32Sub) }

// If opens a block without results that runs when the top of stack is non-zero.
func (c *Code) If() *Code { return c.op(opIf, blockTypeEmpty) }

func (c *Code) Br(depth uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opBr), depth)
	return c
}

func (c *Code) BrIf(depth uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opBrIf), depth)
	return c
}

func (c *Code) Call(fn uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opCall), fn)
	return c
}

func (c *Code) LocalGet(idx uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opLocalGet), idx)
	return c
}

func (c *Code) LocalSet(idx uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opLocalSet), idx)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.buf = AppendSLEB128(append(c.buf, opI32Const), v)
	return c
}

// I32Load8U loads one byte with alignment 0 at the given static offset.
func (c *Code) I32Load8U(offset uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opI32Load8U, 0x00), offset)
	return c
}

// I32Store8 stores one byte with alignment 0 at the given static offset.
func (c *Code) I32Store8(offset uint32) *Code {
	c.buf = AppendULEB128(append(c.buf, opI32Store8, 0x00), offset)
	return c
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.buf
}
