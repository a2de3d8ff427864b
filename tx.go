package weave

import (
	"reflect"

	"github.com/iov-one/vestengine/errors"
)

// Marshaller serializes itself. It may validate first.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent can be serialized and restored. Unmarshal usually needs a
// pointer receiver, which is why Marshaller exists on its own.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is the state transition a client requests. Authentication data
// travels in the Tx around it.
type Msg interface {
	Persistent

	// Path routes the message to its handler, for example
	// "vesting/release". Several message types may share a path.
	Path() string

	// Validate checks everything that can be checked without reading
	// the state.
	Validate() error
}

// Tx is a serialized client request. Every application defines its own
// Tx type carrying whatever its decorators need, signatures included.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// TxDecoder parses a raw transaction.
type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath returns the path of the message in tx, or "(missing)".
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg copies the message of tx into dst, which must point to a value
// of the same type as the message, and validates it.
func LoadMsg(tx Tx, dst interface{}) error {
	msg, err := tx.GetMsg()
	switch {
	case err != nil:
		return errors.Wrap(err, "get msg")
	case msg == nil:
		return errors.Wrap(errors.ErrState, "nil message")
	}

	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "destination %T is not a pointer", dst)
	}
	val := reflect.Indirect(reflect.ValueOf(msg))
	if !val.Type().AssignableTo(target.Elem().Type()) {
		return errors.Wrapf(errors.ErrType, "cannot load %T into %T", msg, dst)
	}
	target.Elem().Set(val)

	return errors.Wrap(msg.Validate(), "invalid message")
}
