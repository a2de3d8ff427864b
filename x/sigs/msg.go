package sigs

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
)

const (
	pathBumpSequenceMsg = "sigs/bump_sequence"

	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

// BumpSequenceMsg increments the sequence of the main signer, invalidating
// any signature created for the skipped values.
type BumpSequenceMsg struct {
	Increment uint32
}

var _ weave.Msg = (*BumpSequenceMsg)(nil)

func (BumpSequenceMsg) Path() string {
	return pathBumpSequenceMsg
}

func (msg *BumpSequenceMsg) Validate() error {
	if msg.Increment < minSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

func (msg *BumpSequenceMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Uint64(1, uint64(msg.Increment))
	return e.Result(), nil
}

func (msg *BumpSequenceMsg) Unmarshal(raw []byte) error {
	*msg = BumpSequenceMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		v, err := f.Uint64()
		if err != nil {
			return err
		}
		if v > maxSequenceIncrement {
			return errors.Wrapf(errors.ErrInput, "increment %d", v)
		}
		msg.Increment = uint32(v)
		return nil
	})
}
