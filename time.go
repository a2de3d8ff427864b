package weave

import (
	"encoding/json"
	"time"

	"github.com/iov-one/vestengine/errors"
)

// UnixTime is a moment in seconds since the epoch. Block times, deposit
// times and unlock times all use it, as the ledger clock has no finer
// resolution.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add moves t by d, dropping anything below a second.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddSeconds moves t by secs. It fails with ErrOverflow instead of
// wrapping around.
func (t UnixTime) AddSeconds(secs int64) (UnixTime, error) {
	sum := int64(t) + secs
	overflow := secs > 0 && sum < int64(t)
	underflow := secs < 0 && sum > int64(t)
	if overflow || underflow {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", t, secs)
	}
	return UnixTime(sum), nil
}

// UnmarshalJSON accepts a number of seconds or an RFC 3339 string. The
// string form is handy in genesis files. Times before the epoch are
// rejected.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	secs, err := parseUnixJSON(raw)
	if err != nil {
		return err
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}

func parseUnixJSON(raw []byte) (int64, error) {
	var secs int64
	if json.Unmarshal(raw, &secs) == nil {
		return secs, nil
	}
	var std time.Time
	if json.Unmarshal(raw, &std) == nil {
		return std.Unix(), nil
	}
	return 0, errors.Wrap(errors.ErrInput, "invalid time format")
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String formats t in UTC.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}
