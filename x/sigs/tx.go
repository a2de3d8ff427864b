package sigs

import (
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a single ed25519 signature together with the sequence
// it was created for.
type StdSignature struct {
	Sequence  int64
	Pubkey    crypto.PublicKey
	Signature []byte
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

func (s *StdSignature) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Int64(1, s.Sequence)
	e.Bytes(2, s.Pubkey)
	e.Bytes(3, s.Signature)
	return e.Result(), nil
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			s.Sequence, err = f.Int64()
		case 2:
			s.Pubkey, err = f.Bytes()
		case 3:
			s.Signature, err = f.Bytes()
		}
		return err
	})
}
