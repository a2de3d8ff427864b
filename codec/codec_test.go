package codec

import (
	"testing"

	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/weavetest/assert"
	"google.golang.org/protobuf/encoding/protowire"
)

// sample is a message with a field of every supported kind.
type sample struct {
	Name   string
	Blob   []byte
	Count  uint64
	Offset int64
	Flag   bool
	List   [][]byte
	Inner  *sample
}

func (s *sample) Marshal() ([]byte, error) {
	var e Encoder
	e.String(1, s.Name)
	e.Bytes(2, s.Blob)
	e.Uint64(3, s.Count)
	e.Int64(4, s.Offset)
	e.Bool(5, s.Flag)
	e.RepeatedBytes(6, s.List)
	if s.Inner != nil {
		if err := e.Message(7, s.Inner); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (s *sample) Unmarshal(raw []byte) error {
	*s = sample{}
	return Walk(raw, func(num Number, f Field) error {
		var err error
		switch num {
		case 1:
			s.Name, err = f.String()
		case 2:
			s.Blob, err = f.Bytes()
		case 3:
			s.Count, err = f.Uint64()
		case 4:
			s.Offset, err = f.Int64()
		case 5:
			s.Flag, err = f.Bool()
		case 6:
			var b []byte
			b, err = f.Bytes()
			s.List = append(s.List, b)
		case 7:
			s.Inner = &sample{}
			err = f.Message(s.Inner)
		}
		return err
	})
}

func TestRoundTrip(t *testing.T) {
	cases := map[string]sample{
		"empty": {},
		"all fields": {
			Name:   "pool",
			Blob:   []byte{0, 1, 2},
			Count:  1 << 40,
			Offset: -12,
			Flag:   true,
			List:   [][]byte{[]byte("a"), []byte("b"), []byte("c")},
			Inner:  &sample{Name: "inner", Count: 1},
		},
	}

	for testName, want := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := want.Marshal()
			assert.Nil(t, err)
			var got sample
			assert.Nil(t, got.Unmarshal(raw))
			assert.Equal(t, want, got)
		})
	}
}

func TestZeroValuesAreOmitted(t *testing.T) {
	raw, err := (&sample{}).Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 0, len(raw))
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	raw, err := (&sample{Name: "x"}).Marshal()
	assert.Nil(t, err)
	raw = protowire.AppendTag(raw, 99, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 7)
	raw = protowire.AppendTag(raw, 98, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 3)

	var got sample
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, "x", got.Name)
}

func TestWireCompatibility(t *testing.T) {
	raw, err := (&sample{Name: "n", Count: 300, Offset: -1, List: [][]byte{{}, {1}}}).Marshal()
	assert.Nil(t, err)

	var nums []protowire.Number
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			t.Fatalf("tag: %s", protowire.ParseError(n))
		}
		raw = raw[n:]
		n = protowire.ConsumeFieldValue(num, typ, raw)
		if n < 0 {
			t.Fatalf("field %d: %s", num, protowire.ParseError(n))
		}
		raw = raw[n:]
		nums = append(nums, num)
	}
	assert.Equal(t, []protowire.Number{1, 3, 4, 6, 6}, nums)
}

func TestWalkErrors(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"truncated tag": {
			raw:     []byte{0x80},
			wantErr: errors.ErrInput,
		},
		"truncated bytes": {
			raw:     []byte{0x0a, 0x05, 'a'},
			wantErr: errors.ErrInput,
		},
		"wrong wire type": {
			// field 1 (string) sent as varint
			raw:     []byte{0x08, 0x01},
			wantErr: errors.ErrType,
		},
		"invalid bool": {
			raw:     []byte{0x28, 0x02},
			wantErr: errors.ErrInput,
		},
		"group": {
			raw:     []byte{0x0b, 0x0c},
			wantErr: errors.ErrInput,
		},
		"truncated fixed": {
			raw:     []byte{0x09, 0x01, 0x02},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var s sample
			err := s.Unmarshal(tc.raw)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
		})
	}
}
