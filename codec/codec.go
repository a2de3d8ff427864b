package codec

import (
	"github.com/gogo/protobuf/proto"
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Number is a protobuf field number.
type Number int32

// wire is a protobuf wire type.
type wire uint8

const (
	wireVarint  wire = proto.WireVarint
	wireFixed64 wire = proto.WireFixed64
	wireBytes   wire = proto.WireBytes
	wireFixed32 wire = proto.WireFixed32
)

// Encoder builds the wire representation of a message, one field at a
// time, in the order the fields are added.
type Encoder struct {
	buf proto.Buffer
}

// Writes to a proto.Buffer only grow a slice and never fail.
func (e *Encoder) tag(num Number, typ wire) {
	_ = e.buf.EncodeVarint(uint64(num)<<3 | uint64(typ))
}

func (e *Encoder) raw(num Number, b []byte) {
	e.tag(num, wireBytes)
	_ = e.buf.EncodeRawBytes(b)
}

// Bytes appends a length delimited field. Empty values are omitted.
func (e *Encoder) Bytes(num Number, b []byte) {
	if len(b) != 0 {
		e.raw(num, b)
	}
}

// RepeatedBytes appends one length delimited field per element. Unlike
// Bytes, empty elements are kept so that the element count is preserved.
func (e *Encoder) RepeatedBytes(num Number, list [][]byte) {
	for _, b := range list {
		e.raw(num, b)
	}
}

// String appends a string field. Empty values are omitted.
func (e *Encoder) String(num Number, s string) {
	if s == "" {
		return
	}
	e.tag(num, wireBytes)
	_ = e.buf.EncodeStringBytes(s)
}

// Uint64 appends a varint field. Zero is omitted.
func (e *Encoder) Uint64(num Number, v uint64) {
	if v == 0 {
		return
	}
	e.tag(num, wireVarint)
	_ = e.buf.EncodeVarint(v)
}

// Int64 appends a signed varint field using the int64 (two's complement)
// protobuf encoding. Zero is omitted.
func (e *Encoder) Int64(num Number, v int64) {
	e.Uint64(num, uint64(v))
}

// Bool appends a boolean field. False is omitted.
func (e *Encoder) Bool(num Number, v bool) {
	if v {
		e.Uint64(num, 1)
	}
}

// Message appends an embedded message. A nil message is omitted.
func (e *Encoder) Message(num Number, m weave.Marshaller) error {
	if m == nil {
		return nil
	}
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	e.raw(num, raw)
	return nil
}

// Result returns the encoded message. An empty message is a non nil, zero
// length slice, as stores treat a nil value as a missing entry.
func (e *Encoder) Result() []byte {
	if b := e.buf.Bytes(); b != nil {
		return b
	}
	return []byte{}
}

// Field is a single decoded field value.
type Field struct {
	typ    wire
	varint uint64
	raw    []byte
}

// Bytes returns the value of a length delimited field. The returned slice
// is a copy and does not share memory with the decoded input.
func (f Field) Bytes() ([]byte, error) {
	if f.typ != wireBytes {
		return nil, errors.Wrapf(errors.ErrType, "want bytes, got wire type %d", f.typ)
	}
	return append([]byte(nil), f.raw...), nil
}

// String returns the value of a string field.
func (f Field) String() (string, error) {
	if f.typ != wireBytes {
		return "", errors.Wrapf(errors.ErrType, "want string, got wire type %d", f.typ)
	}
	return string(f.raw), nil
}

// Uint64 returns the value of a varint field.
func (f Field) Uint64() (uint64, error) {
	if f.typ != wireVarint {
		return 0, errors.Wrapf(errors.ErrType, "want varint, got wire type %d", f.typ)
	}
	return f.varint, nil
}

// Int64 returns the value of a varint field as a signed integer.
func (f Field) Int64() (int64, error) {
	v, err := f.Uint64()
	return int64(v), err
}

// Bool returns the value of a boolean field.
func (f Field) Bool() (bool, error) {
	v, err := f.Uint64()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrInput, "invalid bool value %d", v)
	}
}

// Message decodes an embedded message into dest.
func (f Field) Message(dest weave.Persistent) error {
	if f.typ != wireBytes {
		return errors.Wrapf(errors.ErrType, "want message, got wire type %d", f.typ)
	}
	return dest.Unmarshal(f.raw)
}

// Walk visits every field of a wire encoded message in order. Fixed width
// fields are passed with their raw bytes and fail on access. Groups are
// rejected.
func Walk(data []byte, fn func(num Number, f Field) error) error {
	for len(data) > 0 {
		key, n := proto.DecodeVarint(data)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "truncated tag")
		}
		data = data[n:]
		num, typ := Number(key>>3), wire(key&7)
		if num <= 0 {
			return errors.Wrapf(errors.ErrInput, "invalid field number %d", num)
		}

		f := Field{typ: typ}
		switch typ {
		case wireVarint:
			f.varint, n = proto.DecodeVarint(data)
			if n == 0 {
				return errors.Wrapf(errors.ErrInput, "field %d: truncated varint", num)
			}
		case wireBytes:
			size, m := proto.DecodeVarint(data)
			if m == 0 || size > uint64(len(data)-m) {
				return errors.Wrapf(errors.ErrInput, "field %d: truncated bytes", num)
			}
			n = m + int(size)
			f.raw = data[m:n]
		case wireFixed64, wireFixed32:
			n = 8
			if typ == wireFixed32 {
				n = 4
			}
			if len(data) < n {
				return errors.Wrapf(errors.ErrInput, "field %d: truncated fixed", num)
			}
			f.raw = data[:n]
		default:
			return errors.Wrapf(errors.ErrInput, "field %d: unsupported wire type %d", num, typ)
		}
		data = data[n:]

		if err := fn(num, f); err != nil {
			return errors.Wrapf(err, "field %d", num)
		}
	}
	return nil
}
