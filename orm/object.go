package orm

import (
	"reflect"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// Model is the value of a stored object. It can check its own state and
// serialize itself.
type Model interface {
	x.Validater
	weave.Persistent
}

// Object is a model together with the key it is stored under, relative
// to the bucket prefix.
type Object interface {
	Cloneable
	x.Validater
	Key() []byte
	SetKey([]byte)
	Value() weave.Persistent
}

// Cloneable returns an empty object of the same type, ready to receive a
// stored value.
type Cloneable interface {
	Clone() Object
}

// SimpleObj is the Object used by every bucket of this module.
type SimpleObj struct {
	key   []byte
	value Model
}

var _ Object = (*SimpleObj)(nil)

func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte             { return o.key }
func (o SimpleObj) Value() weave.Persistent { return o.value }
func (o *SimpleObj) SetKey(key []byte)      { o.key = key }

// Validate requires both key and value before delegating to the value.
func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Wrap(errors.ErrEmpty, "missing key")
	case o.value == nil:
		return errors.Wrap(errors.ErrEmpty, "missing value")
	}
	return o.value.Validate()
}

// Clone allocates a zero value of the same model type. A set key is
// copied.
func (o *SimpleObj) Clone() Object {
	zero := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Model)
	clone := &SimpleObj{value: zero}
	if len(o.key) != 0 {
		clone.key = append([]byte(nil), o.key...)
	}
	return clone
}
