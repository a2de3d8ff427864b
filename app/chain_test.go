package app

import (
	"context"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/iov-one/vestengine/weavetest/assert"
)

func TestChain(t *testing.T) {
	d1 := &weavetest.Decorator{}
	d2 := &weavetest.Decorator{}
	var missing *weavetest.Decorator
	h := &weavetest.Handler{}

	stack := ChainDecorators(d1, nil, missing).Chain(d2).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{}

	_, err := stack.Check(ctx, db, tx)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainStopsAtFailingDecorator(t *testing.T) {
	first := &weavetest.Decorator{}
	failing := &weavetest.Decorator{CheckErr: errors.ErrUnauthorized, DeliverErr: errors.ErrUnauthorized}
	last := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	var stack weave.Handler = ChainDecorators(first, failing, last).WithHandler(h)

	_, err := stack.Check(context.Background(), store.MemStore(), &weavetest.Tx{})
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = stack.Deliver(context.Background(), store.MemStore(), &weavetest.Tx{})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Equal(t, 2, first.CallCount())
	assert.Equal(t, 0, last.CallCount())
	assert.Equal(t, 0, h.CallCount())
}
