package app

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
)

// ResultSet is how a query response carries its keys, and separately
// its values: a repeated bytes field, one entry per match.
type ResultSet struct {
	Results [][]byte
}

var _ weave.Persistent = (*ResultSet)(nil)

func (r *ResultSet) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.RepeatedBytes(1, r.Results)
	return e.Result(), nil
}

func (r *ResultSet) Unmarshal(raw []byte) error {
	r.Results = nil
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		b, err := f.Bytes()
		if err == nil {
			r.Results = append(r.Results, b)
		}
		return err
	})
}

// project collects one part of every model.
func project(models []weave.Model, part func(weave.Model) []byte) *ResultSet {
	out := make([][]byte, len(models))
	for i, m := range models {
		out[i] = part(m)
	}
	return &ResultSet{Results: out}
}

func ResultsFromKeys(models []weave.Model) *ResultSet {
	return project(models, func(m weave.Model) []byte { return m.Key })
}

func ResultsFromValues(models []weave.Model) *ResultSet {
	return project(models, func(m weave.Model) []byte { return m.Value })
}

// JoinResults pairs the key and value sets of one response again.
func JoinResults(keys, values *ResultSet) ([]weave.Model, error) {
	if n, m := len(keys.Results), len(values.Results); n != m {
		return nil, errors.Wrapf(errors.ErrInput, "%d keys for %d values", n, m)
	}
	models := make([]weave.Model, len(keys.Results))
	for i, k := range keys.Results {
		models[i] = weave.Pair(k, values.Results[i])
	}
	return models, nil
}

// UnmarshalOneResult decodes the first entry of an encoded ResultSet into
// dst. An empty set fails with ErrNotFound.
func UnmarshalOneResult(raw []byte, dst weave.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return err
	}
	if len(set.Results) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty result set")
	}
	return dst.Unmarshal(set.Results[0])
}
