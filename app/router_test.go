package app

import (
	"context"
	"testing"

	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/iov-one/vestengine/weavetest/assert"
)

func TestRouterSuccess(t *testing.T) {
	r := NewRouter()

	var (
		msg     = &weavetest.Msg{RoutePath: "test/1"}
		handler = &weavetest.Handler{}
	)
	r.Handle(msg, handler)

	db := store.MemStore()
	_, err := r.Check(context.Background(), db, &weavetest.Tx{Msg: msg})
	assert.Nil(t, err)
	_, err = r.Deliver(context.Background(), db, &weavetest.Tx{Msg: msg})
	assert.Nil(t, err)
	assert.Equal(t, 2, handler.CallCount())
}

func TestRouterNoHandler(t *testing.T) {
	r := NewRouter()
	r.Handle(&weavetest.Msg{RoutePath: "test/1"}, &weavetest.Handler{})

	cases := map[string]struct {
		tx      *weavetest.Tx
		wantErr *errors.Error
	}{
		"unknown path": {
			tx:      &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/2"}},
			wantErr: errors.ErrNotFound,
		},
		"no message": {
			tx:      &weavetest.Tx{},
			wantErr: errors.ErrEmpty,
		},
		"broken transaction": {
			tx:      &weavetest.Tx{Err: errors.ErrType},
			wantErr: errors.ErrType,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			_, err := r.Check(context.Background(), db, tc.tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = r.Deliver(context.Background(), db, tc.tx)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestRouterRegisterTwice(t *testing.T) {
	r := NewRouter()
	r.Handle(&weavetest.Msg{RoutePath: "test/1"}, &weavetest.Handler{})
	assert.Panics(t, func() {
		r.Handle(&weavetest.Msg{RoutePath: "test/1"}, &weavetest.Handler{})
	})
	assert.Panics(t, func() {
		r.Handle(&weavetest.Msg{RoutePath: "bad path!"}, &weavetest.Handler{})
	})
}
