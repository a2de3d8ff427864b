package app

import (
	"reflect"

	weave "github.com/iov-one/vestengine"
)

// Decorators is an ordered middleware stack waiting for its final
// handler. The first decorator is the outermost one.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		utils.NewSavepoint().OnDeliver(),
//		sigs.NewDecorator(),
//	).WithHandler(router)
type Decorators []weave.Decorator

// ChainDecorators starts a stack. Nil decorators are dropped, which lets
// callers pass optional ones unconditionally.
func ChainDecorators(ds ...weave.Decorator) Decorators {
	return Decorators(nil).Chain(ds...)
}

// Chain returns a new stack with ds appended.
func (d Decorators) Chain(ds ...weave.Decorator) Decorators {
	out := append(Decorators(nil), d...)
	for _, dec := range ds {
		if dec == nil {
			continue
		}
		if v := reflect.ValueOf(dec); v.Kind() == reflect.Ptr && v.IsNil() {
			continue
		}
		out = append(out, dec)
	}
	return out
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h weave.Handler) weave.Handler {
	for i := len(d) - 1; i >= 0; i-- {
		h = link{dec: d[i], next: h}
	}
	return h
}

type link struct {
	dec  weave.Decorator
	next weave.Handler
}

func (l link) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l link) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
