package weave

import (
	"encoding/json"
)

// Checker validates a transaction without side effects that outlive the
// check store.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes a transaction.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Handler processes the messages routed to it, for example the pool
// operations or a batch execution.
type Handler interface {
	Checker
	Deliverer
}

// Decorator runs around the rest of the handler stack. Signature checks,
// panic recovery and savepoints are decorators.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds message types to handlers.
type Registry interface {
	Handle(Msg, Handler)
}

// CheckResult is the outcome of a successful Check. Failures are
// reported as errors only.
type CheckResult struct {
	Data []byte
	Log  string
}

// DeliverResult is the outcome of a successful Deliver. Data is meant
// for machines, for example a created pool address, Log for humans.
type DeliverResult struct {
	Data []byte
	Log  string
}

// Options is the genesis app state, one JSON section per package.
type Options map[string]json.RawMessage

// ReadOptions decodes the section key into obj. A missing section leaves
// obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, obj)
}

// Initializer loads the genesis section of one package.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers runs every init in order and stops at the first
// failure.
func ChainInitializers(inits ...Initializer) Initializer {
	return initializers(inits)
}

type initializers []Initializer

func (in initializers) FromGenesis(opts Options, db KVStore) error {
	for _, i := range in {
		if err := i.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
