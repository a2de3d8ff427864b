package vesting

import (
	"encoding/binary"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/orm"
	"github.com/iov-one/vestengine/x"
)

// BucketName is where we store the pools
const BucketName = "vest"

// Status is the lifecycle stage of a pool.
type Status uint8

const (
	StatusCreated Status = iota + 1
	StatusDeposited
	StatusNominated
	StatusClaimed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusDeposited:
		return "deposited"
	case StatusNominated:
		return "nominated"
	case StatusClaimed:
		return "claimed"
	default:
		return "unknown"
	}
}

// MaxCapacity is the greatest number of signers a pool can register.
const MaxCapacity = 255

const (
	idSize = weave.AddressLength
	// base, sender, recipient, asset, vault, amount, locked period,
	// deposit time, min sign, status, capacity, count
	headerSize = 5*idSize + 8 + 8 + 8 + 1 + 1 + 1 + 1
)

// Pool is a single vesting agreement.
type Pool struct {
	Base      weave.Address
	Sender    weave.Address
	Recipient weave.Address
	Asset     weave.Address
	Vault     weave.Address
	Amount    uint64
	// LockedPeriod is the number of seconds that must pass after the
	// deposit before the recipient can claim.
	LockedPeriod int64
	DepositTime  weave.UnixTime
	MinSign      uint8
	Status       Status
	// Capacity is the greatest number of signers, fixed at creation.
	Capacity uint8
	Signers  []weave.Address
}

var _ orm.Model = (*Pool)(nil)

// Validate checks the pool invariants that hold in every stage.
func (p *Pool) Validate() error {
	if err := validID("Base", p.Base); err != nil {
		return err
	}
	if err := validID("Sender", p.Sender); err != nil {
		return err
	}
	if err := validID("Asset", p.Asset); err != nil {
		return err
	}
	if !p.Vault.Equals(VaultAddress(p.Base)) {
		return errors.Wrap(errors.ErrModel, "vault does not belong to base")
	}
	if p.Amount == 0 {
		return ErrZeroVestAmount
	}
	if p.LockedPeriod <= 0 {
		return ErrInvalidLockingPeriod
	}
	if p.Status < StatusCreated || p.Status > StatusClaimed {
		return errors.Wrapf(ErrInvalidVestingStatus, "status %d", p.Status)
	}
	if p.Status >= StatusNominated {
		if err := validID("Recipient", p.Recipient); err != nil {
			return err
		}
	} else if p.Recipient != nil {
		return errors.Wrap(errors.ErrModel, "recipient set before nomination")
	}
	if p.Status == StatusCreated && p.DepositTime != 0 {
		return errors.Wrap(errors.ErrModel, "deposit time set before deposit")
	}
	if p.MinSign == 0 {
		return errors.Wrap(errors.ErrModel, "min sign must be positive")
	}
	return validateSigners(p.Sender, p.Signers, int(p.Capacity))
}

func validateSigners(sender weave.Address, signers []weave.Address, capacity int) error {
	if len(signers) > capacity {
		return errors.Wrapf(errors.ErrCapacity, "%d signers, capacity %d", len(signers), capacity)
	}
	var hasSender bool
	for i, s := range signers {
		if err := validID("Signers", s); err != nil {
			return err
		}
		for _, prev := range signers[:i] {
			if prev.Equals(s) {
				return errors.Wrapf(errors.ErrDuplicate, "signer %s", s)
			}
		}
		hasSender = hasSender || s.Equals(sender)
	}
	if !hasSender {
		return errors.Wrap(errors.ErrModel, "sender must be a signer")
	}
	return nil
}

// HasSigner returns true if addr is a registered approver.
func (p *Pool) HasSigner(addr weave.Address) bool {
	for _, s := range p.Signers {
		if s.Equals(addr) {
			return true
		}
	}
	return false
}

// Marshal writes the pool using a fixed layout. All integers are big endian
// and an unset recipient is written as zero bytes. The recipient is only
// read back once the pool is nominated.
func (p *Pool) Marshal() ([]byte, error) {
	if len(p.Signers) > int(p.Capacity) {
		return nil, errors.Wrap(errors.ErrCapacity, "signers")
	}
	out := make([]byte, headerSize, headerSize+len(p.Signers)*idSize)
	for i, id := range []weave.Address{p.Base, p.Sender, p.Recipient, p.Asset, p.Vault} {
		if err := putID(out[i*idSize:], id); err != nil {
			return nil, err
		}
	}
	b := out[5*idSize:]
	binary.BigEndian.PutUint64(b[0:], p.Amount)
	binary.BigEndian.PutUint64(b[8:], uint64(p.LockedPeriod))
	binary.BigEndian.PutUint64(b[16:], uint64(p.DepositTime))
	b[24] = p.MinSign
	b[25] = uint8(p.Status)
	b[26] = p.Capacity
	b[27] = uint8(len(p.Signers))
	for _, s := range p.Signers {
		if len(s) != idSize {
			return nil, errors.Wrapf(errors.ErrInput, "signer %s", s)
		}
		out = append(out, s...)
	}
	return out, nil
}

func putID(dst []byte, id weave.Address) error {
	switch len(id) {
	case 0:
		return nil
	case idSize:
		copy(dst, id)
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "identifier of %d bytes", len(id))
	}
}

// Unmarshal reads a pool written by Marshal.
func (p *Pool) Unmarshal(raw []byte) error {
	if len(raw) < headerSize {
		return errors.Wrapf(errors.ErrInput, "pool record of %d bytes", len(raw))
	}
	ids := make([]weave.Address, 5)
	for i := range ids {
		ids[i] = getID(raw[i*idSize:])
	}
	b := raw[5*idSize:]
	count := int(b[27])
	if len(raw) != headerSize+count*idSize {
		return errors.Wrapf(errors.ErrInput, "pool record of %d bytes with %d signers", len(raw), count)
	}

	*p = Pool{
		Base:         ids[0],
		Sender:       ids[1],
		Asset:        ids[3],
		Vault:        ids[4],
		Amount:       binary.BigEndian.Uint64(b[0:]),
		LockedPeriod: int64(binary.BigEndian.Uint64(b[8:])),
		DepositTime:  weave.UnixTime(binary.BigEndian.Uint64(b[16:])),
		MinSign:      b[24],
		Status:       Status(b[25]),
		Capacity:     b[26],
	}
	if p.Status >= StatusNominated {
		p.Recipient = ids[2]
	}
	if count > 0 {
		p.Signers = make([]weave.Address, count)
		for i := range p.Signers {
			p.Signers[i] = getID(raw[headerSize+i*idSize:])
		}
	}
	return nil
}

func getID(src []byte) weave.Address {
	return append(weave.Address(nil), src[:idSize]...)
}

// validID is x.ValidAddress that also rejects the all zero identifier,
// which the record layout uses for an unset recipient.
func validID(field string, addr weave.Address) error {
	if err := x.ValidAddress(field, addr); err != nil {
		return err
	}
	for _, c := range addr {
		if c != 0 {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInput, "%s: zero identifier", field)
}

// AsPool will safely type-cast any value from Bucket to a Pool
func AsPool(obj orm.Object) *Pool {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Pool)
}

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a vesting.Bucket with default name, a sender
// index and an index over every approver.
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, new(Pool))).
		WithIndex("sender", idxSender).
		WithMultiKeyIndex("signer", idxSigners)
	return Bucket{Bucket: b}
}

func idxSender(obj orm.Object) ([]byte, error) {
	p := AsPool(obj)
	if p == nil {
		return nil, errors.Wrapf(errors.ErrHuman, "invalid object %T", obj)
	}
	return p.Sender, nil
}

func idxSigners(obj orm.Object) ([][]byte, error) {
	p := AsPool(obj)
	if p == nil {
		return nil, errors.Wrapf(errors.ErrHuman, "invalid object %T", obj)
	}
	res := make([][]byte, len(p.Signers))
	for i, s := range p.Signers {
		res[i] = s
	}
	return res, nil
}

// GetPool loads the pool stored under id.
func (b Bucket) GetPool(db weave.ReadOnlyKVStore, id weave.Address) (*Pool, error) {
	obj, err := b.Get(db, id)
	if err != nil {
		return nil, err
	}
	p := AsPool(obj)
	if p == nil {
		return nil, errors.Wrapf(ErrNoSuchPool, "%s", id)
	}
	return p, nil
}

// SavePool writes the pool under its id.
func (b Bucket) SavePool(db weave.KVStore, p *Pool) error {
	return b.Save(db, orm.NewSimpleObj(PoolAddress(p.Base), p))
}

// BySender returns all pools created by the sender.
func (b Bucket) BySender(db weave.ReadOnlyKVStore, sender weave.Address) ([]*Pool, error) {
	return b.byIndex(db, "sender", sender)
}

// BySigner returns all pools listing addr among their approvers.
func (b Bucket) BySigner(db weave.ReadOnlyKVStore, addr weave.Address) ([]*Pool, error) {
	return b.byIndex(db, "signer", addr)
}

func (b Bucket) byIndex(db weave.ReadOnlyKVStore, name string, value []byte) ([]*Pool, error) {
	objs, err := b.GetIndexed(db, name, value)
	if err != nil {
		return nil, err
	}
	pools := make([]*Pool, 0, len(objs))
	for _, o := range objs {
		if p := AsPool(o); p != nil {
			pools = append(pools, p)
		}
	}
	return pools, nil
}
