package cash

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

const (
	pathSendMsg = "cash/send"

	maxMemoSize int = 128
)

// SendMsg moves an amount of one asset between two holders.
type SendMsg struct {
	Source      weave.Address
	Destination weave.Address
	Asset       weave.Address
	Amount      uint64
	Memo        string
}

var _ weave.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	if s.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive SendMsg")
	}
	if err := x.ValidAddress("Source", s.Source); err != nil {
		return err
	}
	if err := x.ValidAddress("Destination", s.Destination); err != nil {
		return err
	}
	if err := x.ValidAddress("Asset", s.Asset); err != nil {
		return err
	}
	if len(s.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrState, "memo too long")
	}
	return nil
}

func (s *SendMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, s.Source)
	e.Bytes(2, s.Destination)
	e.Bytes(3, s.Asset)
	e.Uint64(4, s.Amount)
	e.String(5, s.Memo)
	return e.Result(), nil
}

func (s *SendMsg) Unmarshal(raw []byte) error {
	*s = SendMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			s.Source, err = f.Bytes()
		case 2:
			s.Destination, err = f.Bytes()
		case 3:
			s.Asset, err = f.Bytes()
		case 4:
			s.Amount, err = f.Uint64()
		case 5:
			s.Memo, err = f.String()
		}
		return err
	})
}
