package vestd

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/execution"
	"github.com/iov-one/vestengine/x/sigs"
	"github.com/iov-one/vestengine/x/vesting"
)

// Tx is the transaction type of this application. It carries exactly one
// message and any number of signatures over it.
type Tx struct {
	Signatures []*sigs.StdSignature
	Msg        weave.Msg
}

// make sure tx fulfills all interfaces
var _ weave.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message of this transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "message is missing")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of
// them.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	tx.Signatures = sigs
	return bz, err
}

// msgFields maps every supported message to its field number. The
// numbers are part of the wire format and must never be reused.
var msgFields = []struct {
	num codec.Number
	new func() weave.Msg
}{
	{2, func() weave.Msg { return &cash.SendMsg{} }},
	{3, func() weave.Msg { return &vesting.CreatePoolMsg{} }},
	{4, func() weave.Msg { return &vesting.DepositMsg{} }},
	{5, func() weave.Msg { return &vesting.NominateMsg{} }},
	{6, func() weave.Msg { return &vesting.ClaimMsg{} }},
	{7, func() weave.Msg { return &execution.ExecuteMsg{} }},
	{8, func() weave.Msg { return &vesting.UpdateConfigurationMsg{} }},
	{9, func() weave.Msg { return &sigs.BumpSequenceMsg{} }},
}

func msgField(msg weave.Msg) (codec.Number, error) {
	for _, f := range msgFields {
		if f.new().Path() == msg.Path() {
			return f.num, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrInput, "unsupported message %q", msg.Path())
}

func (tx *Tx) Marshal() ([]byte, error) {
	var e codec.Encoder
	for _, s := range tx.Signatures {
		if s == nil {
			return nil, errors.Wrap(errors.ErrEmpty, "signature")
		}
		if err := e.Message(1, s); err != nil {
			return nil, err
		}
	}
	if tx.Msg != nil {
		num, err := msgField(tx.Msg)
		if err != nil {
			return nil, err
		}
		if err := e.Message(num, tx.Msg); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num == 1 {
			var s sigs.StdSignature
			if err := f.Message(&s); err != nil {
				return err
			}
			tx.Signatures = append(tx.Signatures, &s)
			return nil
		}
		for _, mf := range msgFields {
			if mf.num != num {
				continue
			}
			if tx.Msg != nil {
				return errors.Wrap(errors.ErrInput, "more than one message")
			}
			msg := mf.new()
			if err := f.Message(msg); err != nil {
				return err
			}
			tx.Msg = msg
			return nil
		}
		return nil
	})
}
