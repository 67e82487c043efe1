package wasmbuild

// AppendULEB128 appends v in unsigned LEB128 form.
func AppendULEB128(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

// AppendSLEB128 appends v in signed LEB128 form.
func AppendSLEB128[T int32 | int64](buf []byte, v T) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

func appendName(buf []byte, s string) []byte {
	buf = AppendULEB128(buf, uint32(len(s)))
	return append(buf, s...)
}
