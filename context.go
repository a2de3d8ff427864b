package weave

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context carries the block information every handler sees: height, time,
// chain ID and logger.
type Context = context.Context

type ctxKey uint8

const (
	heightKey ctxKey = iota + 1
	chainIDKey
	loggerKey
	blockTimeKey
)

// DefaultLogger is returned by GetLogger when the context holds none.
var DefaultLogger = log.NewNopLogger()

var chainIDFormat = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`)

// IsValidChainID reports whether id has 6 to 20 characters out of
// [a-zA-Z0-9_-].
func IsValidChainID(id string) bool {
	return chainIDFormat.MatchString(id)
}

// setOnce stores val under key. Block values are written once per
// context chain, a second write panics.
func setOnce(ctx Context, key ctxKey, name string, val interface{}) Context {
	if ctx.Value(key) != nil {
		panic(name + " already set")
	}
	return context.WithValue(ctx, key, val)
}

// WithHeight sets the block height. It panics if a height is set.
func WithHeight(ctx Context, height int64) Context {
	return setOnce(ctx, heightKey, "block height", height)
}

// GetHeight returns the block height, or false if none was set.
func GetHeight(ctx Context) (int64, bool) {
	h, ok := ctx.Value(heightKey).(int64)
	return h, ok
}

// WithChainID sets the chain ID. It panics if id is not valid or a chain
// ID is set.
func WithChainID(ctx Context, id string) Context {
	if !IsValidChainID(id) {
		panic(fmt.Sprintf("invalid chain id %q", id))
	}
	return setOnce(ctx, chainIDKey, "chain id", id)
}

// GetChainID returns the chain ID. It panics if none was set, as signature
// checks cannot work without it.
func GetChainID(ctx Context) string {
	id, ok := ctx.Value(chainIDKey).(string)
	if !ok {
		panic("chain id not set")
	}
	return id
}

// WithBlockTime sets the block time in UTC, truncated to whole seconds.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, blockTimeKey, t.UTC().Truncate(time.Second))
}

// BlockTime returns the block time. A missing or zero time gives false.
func BlockTime(ctx Context) (time.Time, bool) {
	t, ok := ctx.Value(blockTimeKey).(time.Time)
	return t, ok && !t.IsZero()
}

// BlockNow returns the block time as UnixTime. It panics without a block
// time, which only happens for a misconfigured application.
func BlockNow(ctx Context) UnixTime {
	t, ok := BlockTime(ctx)
	if !ok {
		panic("block time not set")
	}
	return AsUnixTime(t)
}

// IsExpired reports whether t is at or before the block time.
func IsExpired(ctx Context, t UnixTime) bool {
	return t <= BlockNow(ctx)
}

func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithLogInfo adds keyvals to every line logged through the returned
// context.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(loggerKey).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}
