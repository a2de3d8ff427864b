package vesting

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
	"github.com/iov-one/vestengine/x/cash"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl cash.Controller) {
	bucket := NewBucket()
	r.Handle(&CreatePoolMsg{}, CreatePoolHandler{auth: auth, bucket: bucket})
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, bucket: bucket, cash: ctrl})
	r.Handle(&NominateMsg{}, NominateHandler{auth: auth, bucket: bucket})
	r.Handle(&ClaimMsg{}, ClaimHandler{auth: auth, bucket: bucket, cash: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth, nil))
}

// RegisterQuery will register this bucket as "/pools"
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("pools", qr)
}

// CreatePoolHandler stores a new pool in the Created stage.
type CreatePoolHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ weave.Handler = CreatePoolHandler{}

func (h CreatePoolHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h CreatePoolHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.SavePool(db, pool); err != nil {
		return nil, errors.Wrap(err, "cannot store pool")
	}
	id := PoolAddress(pool.Base)
	weave.GetLogger(ctx).Info("pool created", "pool", id, "status", pool.Status)
	return &weave.DeliverResult{Data: id}, nil
}

// validate does all common pre-processing between Check and Deliver and
// returns the pool to be stored.
func (h CreatePoolHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Pool, error) {
	var msg CreatePoolMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if msg.LockedPeriod < conf.MinLockPeriod {
		return nil, errors.Wrapf(ErrInvalidLockingPeriod, "must be at least %d seconds", conf.MinLockPeriod)
	}
	if uint32(msg.Capacity) > conf.MaxSigners {
		return nil, errors.Wrapf(errors.ErrCapacity, "capacity must not exceed %d", conf.MaxSigners)
	}

	signers, err := registerSigners(msg.Sender, msg.Signers, int(msg.Capacity))
	if err != nil {
		return nil, err
	}
	if int(msg.MinSign) > len(signers) {
		return nil, errors.Wrapf(errors.ErrInput, "min sign %d with %d signers", msg.MinSign, len(signers))
	}

	if !h.auth.HasAddress(ctx, msg.Sender) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender signature missing")
	}
	if !h.auth.HasAddress(ctx, msg.Base) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "base signature missing")
	}

	id := PoolAddress(msg.Base)
	switch existing, err := h.bucket.Get(db, id); {
	case err != nil:
		return nil, errors.Wrap(err, "cannot load pool")
	case existing != nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "pool %s", id)
	}

	return &Pool{
		Base:         msg.Base,
		Sender:       msg.Sender,
		Asset:        msg.Asset,
		Vault:        VaultAddress(msg.Base),
		Amount:       msg.Amount,
		LockedPeriod: msg.LockedPeriod,
		MinSign:      msg.MinSign,
		Status:       StatusCreated,
		Capacity:     msg.Capacity,
		Signers:      signers,
	}, nil
}

// registerSigners returns the sender followed by the candidates in order,
// without duplicates. More signers than capacity is ErrCapacity.
func registerSigners(sender weave.Address, candidates []weave.Address, capacity int) ([]weave.Address, error) {
	signers := make([]weave.Address, 0, capacity)
	signers = append(signers, sender)
	for _, c := range candidates {
		if containsAddr(signers, c) {
			continue
		}
		if len(signers) == capacity {
			return nil, errors.Wrapf(errors.ErrCapacity, "more than %d signers", capacity)
		}
		signers = append(signers, c)
	}
	return signers, nil
}

func containsAddr(list []weave.Address, a weave.Address) bool {
	for _, l := range list {
		if l.Equals(a) {
			return true
		}
	}
	return false
}

// DepositHandler moves the pool amount into the vault.
type DepositHandler struct {
	auth   x.Authenticator
	bucket Bucket
	cash   cash.Controller
}

var _ weave.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h DepositHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.DepositTime = weave.BlockNow(ctx)
	pool.Status = StatusDeposited
	if err := pool.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pool")
	}
	if err := h.cash.Transfer(ctx, db, h.auth, pool.Sender, pool.Vault, pool.Asset, pool.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot fund vault")
	}
	if err := h.bucket.SavePool(db, pool); err != nil {
		return nil, errors.Wrap(err, "cannot store pool")
	}
	weave.GetLogger(ctx).Info("pool deposited", "pool", PoolAddress(pool.Base), "status", pool.Status)
	return &weave.DeliverResult{}, nil
}

func (h DepositHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Pool, error) {
	var msg DepositMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	pool, err := h.bucket.GetPool(db, msg.Pool)
	if err != nil {
		return nil, err
	}
	if pool.Status != StatusCreated {
		return nil, errors.Wrapf(ErrInvalidVestingStatus, "pool is %s", pool.Status)
	}
	if !msg.Sender.Equals(pool.Sender) {
		return nil, errors.Wrapf(ErrInvalidSender, "%s", msg.Sender)
	}
	if !msg.Asset.Equals(pool.Asset) {
		return nil, errors.Wrapf(ErrInvalidMint, "%s", msg.Asset)
	}
	if !h.auth.HasAddress(ctx, pool.Sender) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "sender signature missing")
	}
	if err := CheckQuorum(ctx, h.auth, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// NominateHandler sets the recipient of a deposited pool.
type NominateHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ weave.Handler = NominateHandler{}

func (h NominateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h NominateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.Recipient = msg.Recipient
	pool.Status = StatusNominated
	if err := h.bucket.SavePool(db, pool); err != nil {
		return nil, errors.Wrap(err, "cannot store pool")
	}
	weave.GetLogger(ctx).Info("pool nominated",
		"pool", PoolAddress(pool.Base), "status", pool.Status, "recipient", pool.Recipient)
	return &weave.DeliverResult{}, nil
}

func (h NominateHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*NominateMsg, *Pool, error) {
	var msg NominateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := h.bucket.GetPool(db, msg.Pool)
	if err != nil {
		return nil, nil, err
	}
	if pool.Status != StatusDeposited {
		return nil, nil, errors.Wrapf(ErrInvalidVestingStatus, "pool is %s", pool.Status)
	}
	if !msg.Sender.Equals(pool.Sender) {
		return nil, nil, errors.Wrapf(ErrInvalidSender, "%s", msg.Sender)
	}
	if !h.auth.HasAddress(ctx, pool.Sender) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "sender signature missing")
	}
	if err := CheckQuorum(ctx, h.auth, pool); err != nil {
		return nil, nil, err
	}
	return &msg, pool, nil
}

// ClaimHandler releases the vault of a nominated pool to its recipient.
type ClaimHandler struct {
	auth   x.Authenticator
	bucket Bucket
	cash   cash.Controller
}

var _ weave.Handler = ClaimHandler{}

func (h ClaimHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h ClaimHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.Status = StatusClaimed
	if err := pool.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pool")
	}
	release := withCustody(ctx, pool)
	if err := h.cash.Transfer(release, db, custodyAuth{}, pool.Vault, pool.Recipient, pool.Asset, pool.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot release vault")
	}
	if err := h.bucket.SavePool(db, pool); err != nil {
		return nil, errors.Wrap(err, "cannot store pool")
	}
	weave.GetLogger(ctx).Info("pool claimed", "pool", PoolAddress(pool.Base), "status", pool.Status)
	return &weave.DeliverResult{}, nil
}

func (h ClaimHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Pool, error) {
	var msg ClaimMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	pool, err := h.bucket.GetPool(db, msg.Pool)
	if err != nil {
		return nil, err
	}
	if pool.Status != StatusNominated {
		return nil, errors.Wrapf(ErrInvalidVestingStatus, "pool is %s", pool.Status)
	}
	if !msg.Receiver.Equals(pool.Recipient) {
		return nil, errors.Wrapf(ErrInvalidReceiver, "%s", msg.Receiver)
	}
	if !msg.Base.Equals(pool.Base) {
		return nil, errors.Wrapf(ErrInvalidBaseKey, "%s", msg.Base)
	}
	if !msg.Asset.Equals(pool.Asset) {
		return nil, errors.Wrapf(ErrInvalidMint, "%s", msg.Asset)
	}
	unlock, err := pool.DepositTime.AddSeconds(pool.LockedPeriod)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidClaimTime, err.Error())
	}
	if !weave.IsExpired(ctx, unlock) {
		return nil, errors.Wrapf(ErrInvalidClaimTime, "locked until %s", unlock)
	}
	if !h.auth.HasAddress(ctx, pool.Recipient) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "receiver signature missing")
	}
	return pool, nil
}
