package utils

import (
	"context"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type panicHandler struct{}

func (panicHandler) Check(weave.Context, weave.KVStore, weave.Tx) (*weave.CheckResult, error) {
	panic("check failed")
}

func (panicHandler) Deliver(weave.Context, weave.KVStore, weave.Tx) (*weave.DeliverResult, error) {
	panic("deliver failed")
}

func TestRecovery(t *testing.T) {
	h := weavetest.Decorate(panicHandler{}, NewRecovery())
	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{}

	_, err := h.Check(ctx, db, tx)
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "check failed")

	_, err = h.Deliver(ctx, db, tx)
	require.Error(t, err)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "deliver failed")
}

func TestSavepoint(t *testing.T) {
	key, value := []byte("key"), []byte("value")

	cases := map[string]struct {
		savepoint Savepoint
		check     bool
		err       error
		wantKey   bool
	}{
		"inactive savepoint keeps writes of a failed check": {
			savepoint: NewSavepoint(),
			check:     true,
			err:       errors.ErrState,
			wantKey:   true,
		},
		"check savepoint drops writes of a failed check": {
			savepoint: NewSavepoint().OnCheck(),
			check:     true,
			err:       errors.ErrState,
		},
		"check savepoint does not apply to deliver": {
			savepoint: NewSavepoint().OnCheck(),
			err:       errors.ErrState,
			wantKey:   true,
		},
		"deliver savepoint drops writes of a failed deliver": {
			savepoint: NewSavepoint().OnDeliver(),
			err:       errors.ErrState,
		},
		"both savepoints drop writes of a failed check": {
			savepoint: NewSavepoint().OnDeliver().OnCheck(),
			check:     true,
			err:       errors.ErrState,
		},
		"successful deliver is written": {
			savepoint: NewSavepoint().OnDeliver(),
			wantKey:   true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := weavetest.Decorate(&weavetest.WriteHandler{Key: key, Value: value, Err: tc.err}, tc.savepoint)

			var err error
			if tc.check {
				_, err = h.Check(context.Background(), db, &weavetest.Tx{})
			} else {
				_, err = h.Deliver(context.Background(), db, &weavetest.Tx{})
			}
			if tc.err != nil {
				assert.True(t, errors.ErrState.Is(err))
			} else {
				assert.NoError(t, err)
			}

			has, err := db.Has(key)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, has)
		})
	}
}

type recordingLogger struct {
	log.Logger
	levels *[]string
}

func (l recordingLogger) record(level string) { *l.levels = append(*l.levels, level) }

func (l recordingLogger) Debug(msg string, keyvals ...interface{}) { l.record("debug") }
func (l recordingLogger) Info(msg string, keyvals ...interface{})  { l.record("info") }
func (l recordingLogger) Error(msg string, keyvals ...interface{}) { l.record("error") }
func (l recordingLogger) With(keyvals ...interface{}) log.Logger   { return l }

func TestLogging(t *testing.T) {
	var levels []string
	ctx := weave.WithLogger(context.Background(), recordingLogger{Logger: log.NewNopLogger(), levels: &levels})
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/log"}}

	ok := weavetest.Decorate(&weavetest.Handler{}, NewLogging())
	failing := weavetest.Decorate(&weavetest.Handler{CheckErr: errors.ErrState, DeliverErr: errors.ErrState}, NewLogging())

	_, _ = ok.Check(ctx, db, tx)
	_, _ = ok.Deliver(ctx, db, tx)
	_, _ = failing.Check(ctx, db, tx)
	_, _ = failing.Deliver(ctx, db, tx)

	assert.Equal(t, []string{"debug", "info", "error", "error"}, levels)
}
