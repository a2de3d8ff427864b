package execution

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

const (
	pathExecuteMsg = "execution/execute"

	// MaxCalls is the greatest number of sub-calls a single batch can
	// carry.
	MaxCalls = 32
)

// AccountMeta references an account used by a sub-call.
type AccountMeta struct {
	Address    weave.Address
	IsSigner   bool
	IsWritable bool
}

func (a *AccountMeta) Validate() error {
	return x.ValidAddress("Address", a.Address)
}

func (a *AccountMeta) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, a.Address)
	e.Bool(2, a.IsSigner)
	e.Bool(3, a.IsWritable)
	return e.Result(), nil
}

func (a *AccountMeta) Unmarshal(raw []byte) error {
	*a = AccountMeta{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			a.Address, err = f.Bytes()
		case 2:
			a.IsSigner, err = f.Bool()
		case 3:
			a.IsWritable, err = f.Bool()
		}
		return err
	})
}

// Call describes a single sub-call of a batch.
type Call struct {
	// Target is the ID of the program to run, see ProgramID.
	Target   weave.Address
	Accounts []AccountMeta
	// Payload is passed to the program as is.
	Payload []byte
}

func (c *Call) Validate() error {
	if err := x.ValidAddress("Target", c.Target); err != nil {
		return err
	}
	for i := range c.Accounts {
		if err := c.Accounts[i].Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}

func (c *Call) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, c.Target)
	for i := range c.Accounts {
		if err := e.Message(2, &c.Accounts[i]); err != nil {
			return nil, err
		}
	}
	e.Bytes(3, c.Payload)
	return e.Result(), nil
}

func (c *Call) Unmarshal(raw []byte) error {
	*c = Call{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			c.Target, err = f.Bytes()
		case 2:
			var a AccountMeta
			err = f.Message(&a)
			c.Accounts = append(c.Accounts, a)
		case 3:
			c.Payload, err = f.Bytes()
		}
		return err
	})
}

// Signers returns the addresses of all accounts tagged as signer.
func (c *Call) Signers() []weave.Address {
	var signers []weave.Address
	for _, a := range c.Accounts {
		if a.IsSigner {
			signers = append(signers, a.Address)
		}
	}
	return signers
}

// ExecuteMsg runs the calls in order.
type ExecuteMsg struct {
	Calls []Call
}

var _ weave.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	switch n := len(m.Calls); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "no calls")
	case n > MaxCalls:
		return errors.Wrapf(errors.ErrMsg, "%d calls, at most %d allowed", n, MaxCalls)
	}
	for i := range m.Calls {
		if err := m.Calls[i].Validate(); err != nil {
			return errors.Wrapf(err, "call %d", i)
		}
	}
	return nil
}

func (m *ExecuteMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	for i := range m.Calls {
		if err := e.Message(1, &m.Calls[i]); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (m *ExecuteMsg) Unmarshal(raw []byte) error {
	*m = ExecuteMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		var c Call
		if err := f.Message(&c); err != nil {
			return err
		}
		m.Calls = append(m.Calls, c)
		return nil
	})
}
