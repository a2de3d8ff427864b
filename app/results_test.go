package app

import (
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/weavetest/assert"
)

func TestResultSetJoin(t *testing.T) {
	models := []weave.Model{
		weave.Pair([]byte("a"), []byte("1")),
		weave.Pair([]byte("b"), []byte("2")),
		weave.Pair([]byte("c"), []byte("3")),
	}
	keys, err := ResultsFromKeys(models).Marshal()
	assert.Nil(t, err)
	values, err := ResultsFromValues(models).Marshal()
	assert.Nil(t, err)

	var k, v ResultSet
	assert.Nil(t, k.Unmarshal(keys))
	assert.Nil(t, v.Unmarshal(values))
	got, err := JoinResults(&k, &v)
	assert.Nil(t, err)
	assert.Equal(t, models, got)

	_, err = JoinResults(&k, &ResultSet{})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestUnmarshalOneResult(t *testing.T) {
	raw, err := (&ResultSet{}).Marshal()
	assert.Nil(t, err)
	var dst ResultSet
	assert.IsErr(t, errors.ErrNotFound, UnmarshalOneResult(raw, &dst))
}
