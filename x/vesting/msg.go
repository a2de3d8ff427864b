package vesting

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
)

const (
	pathCreatePoolMsg = "vesting/create"
	pathDepositMsg    = "vesting/deposit"
	pathNominateMsg   = "vesting/nominate"
	pathClaimMsg      = "vesting/claim"
)

var (
	_ weave.Msg = (*CreatePoolMsg)(nil)
	_ weave.Msg = (*DepositMsg)(nil)
	_ weave.Msg = (*NominateMsg)(nil)
	_ weave.Msg = (*ClaimMsg)(nil)
)

// CreatePoolMsg creates a pool stored under PoolAddress(Base).
type CreatePoolMsg struct {
	Base         weave.Address
	Sender       weave.Address
	Asset        weave.Address
	Amount       uint64
	LockedPeriod int64
	MinSign      uint8
	// Signers are the approvers besides the sender.
	Signers  []weave.Address
	Capacity uint8
}

func (CreatePoolMsg) Path() string {
	return pathCreatePoolMsg
}

// Validate checks the amount first and the lock period second, so that
// these failures do not depend on the other fields.
func (m *CreatePoolMsg) Validate() error {
	if m.Amount == 0 {
		return errors.Wrap(ErrZeroVestAmount, "amount")
	}
	if m.LockedPeriod <= 0 {
		return errors.Wrapf(ErrInvalidLockingPeriod, "%d seconds", m.LockedPeriod)
	}
	if err := validID("Base", m.Base); err != nil {
		return err
	}
	if err := validID("Sender", m.Sender); err != nil {
		return err
	}
	if err := validID("Asset", m.Asset); err != nil {
		return err
	}
	for _, s := range m.Signers {
		if err := validID("Signers", s); err != nil {
			return err
		}
	}
	if m.Capacity == 0 {
		return errors.Wrap(errors.ErrMsg, "capacity must be positive")
	}
	if m.MinSign == 0 {
		return errors.Wrap(errors.ErrMsg, "min sign must be positive")
	}
	return nil
}

func (m *CreatePoolMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, m.Base)
	e.Bytes(2, m.Sender)
	e.Bytes(3, m.Asset)
	e.Uint64(4, m.Amount)
	e.Int64(5, m.LockedPeriod)
	e.Uint64(6, uint64(m.MinSign))
	signers := make([][]byte, len(m.Signers))
	for i, s := range m.Signers {
		signers[i] = s
	}
	e.RepeatedBytes(7, signers)
	e.Uint64(8, uint64(m.Capacity))
	return e.Result(), nil
}

func (m *CreatePoolMsg) Unmarshal(raw []byte) error {
	*m = CreatePoolMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Base, err = f.Bytes()
		case 2:
			m.Sender, err = f.Bytes()
		case 3:
			m.Asset, err = f.Bytes()
		case 4:
			m.Amount, err = f.Uint64()
		case 5:
			m.LockedPeriod, err = f.Int64()
		case 6:
			m.MinSign, err = uint8Field(f)
		case 7:
			var s []byte
			s, err = f.Bytes()
			m.Signers = append(m.Signers, s)
		case 8:
			m.Capacity, err = uint8Field(f)
		}
		return err
	})
}

func uint8Field(f codec.Field) (uint8, error) {
	v, err := f.Uint64()
	if err != nil {
		return 0, err
	}
	if v > 255 {
		return 0, errors.Wrapf(errors.ErrInput, "value %d does not fit a byte", v)
	}
	return uint8(v), nil
}

// DepositMsg moves the pool amount from the sender into the vault.
type DepositMsg struct {
	Pool   weave.Address
	Sender weave.Address
	Asset  weave.Address
}

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Validate() error {
	if err := validID("Pool", m.Pool); err != nil {
		return err
	}
	if err := validID("Sender", m.Sender); err != nil {
		return err
	}
	return validID("Asset", m.Asset)
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, m.Pool)
	e.Bytes(2, m.Sender)
	e.Bytes(3, m.Asset)
	return e.Result(), nil
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	*m = DepositMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Pool, err = f.Bytes()
		case 2:
			m.Sender, err = f.Bytes()
		case 3:
			m.Asset, err = f.Bytes()
		}
		return err
	})
}

// NominateMsg sets the recipient of a deposited pool.
type NominateMsg struct {
	Pool      weave.Address
	Sender    weave.Address
	Recipient weave.Address
}

func (NominateMsg) Path() string {
	return pathNominateMsg
}

func (m *NominateMsg) Validate() error {
	if err := validID("Pool", m.Pool); err != nil {
		return err
	}
	if err := validID("Sender", m.Sender); err != nil {
		return err
	}
	return validID("Recipient", m.Recipient)
}

func (m *NominateMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, m.Pool)
	e.Bytes(2, m.Sender)
	e.Bytes(3, m.Recipient)
	return e.Result(), nil
}

func (m *NominateMsg) Unmarshal(raw []byte) error {
	*m = NominateMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Pool, err = f.Bytes()
		case 2:
			m.Sender, err = f.Bytes()
		case 3:
			m.Recipient, err = f.Bytes()
		}
		return err
	})
}

// ClaimMsg releases the vault of a nominated pool to its recipient.
type ClaimMsg struct {
	Pool     weave.Address
	Receiver weave.Address
	Base     weave.Address
	Asset    weave.Address
}

func (ClaimMsg) Path() string {
	return pathClaimMsg
}

func (m *ClaimMsg) Validate() error {
	if err := validID("Pool", m.Pool); err != nil {
		return err
	}
	if err := validID("Receiver", m.Receiver); err != nil {
		return err
	}
	if err := validID("Base", m.Base); err != nil {
		return err
	}
	return validID("Asset", m.Asset)
}

func (m *ClaimMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, m.Pool)
	e.Bytes(2, m.Receiver)
	e.Bytes(3, m.Base)
	e.Bytes(4, m.Asset)
	return e.Result(), nil
}

func (m *ClaimMsg) Unmarshal(raw []byte) error {
	*m = ClaimMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Pool, err = f.Bytes()
		case 2:
			m.Receiver, err = f.Bytes()
		case 3:
			m.Base, err = f.Bytes()
		case 4:
			m.Asset, err = f.Bytes()
		}
		return err
	})
}
