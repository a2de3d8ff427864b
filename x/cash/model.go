package cash

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Holding is the balance of one asset owned by one holder.
type Holding struct {
	Amount uint64
}

var _ orm.Model = (*Holding)(nil)

// Validate is a noop, any balance is valid.
func (h *Holding) Validate() error {
	return nil
}

func (h *Holding) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Uint64(1, h.Amount)
	return e.Result(), nil
}

func (h *Holding) Unmarshal(raw []byte) error {
	*h = Holding{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		v, err := f.Uint64()
		h.Amount = v
		return err
	})
}

// HoldingKey returns the key a holding is stored under. Holdings of one
// holder share a prefix, so they can be listed with a prefix query.
func HoldingKey(holder, asset weave.Address) []byte {
	key := make([]byte, 0, len(holder)+len(asset))
	key = append(key, holder...)
	return append(key, asset...)
}

// AsHolding will safely type-cast any value from Bucket to a Holding
func AsHolding(obj orm.Object) *Holding {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Holding)
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, new(Holding))),
	}
}

// Balance returns the amount of asset owned by the holder. A missing
// holding has a zero balance.
func (b Bucket) Balance(db weave.ReadOnlyKVStore, holder, asset weave.Address) (uint64, error) {
	obj, err := b.Get(db, HoldingKey(holder, asset))
	if err != nil {
		return 0, err
	}
	if h := AsHolding(obj); h != nil {
		return h.Amount, nil
	}
	return 0, nil
}

// SetBalance writes the balance of a holding. A zero balance removes the
// holding from the store.
func (b Bucket) SetBalance(db weave.KVStore, holder, asset weave.Address, amount uint64) error {
	key := HoldingKey(holder, asset)
	if amount == 0 {
		if err := db.Delete(b.DBKey(key)); err != nil {
			return errors.Wrap(err, "delete holding")
		}
		return nil
	}
	return b.Save(db, orm.NewSimpleObj(key, &Holding{Amount: amount}))
}
