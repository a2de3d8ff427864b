package orm

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// joinKey returns a new slice holding prefix followed by key. A fresh
// allocation keeps later calls from writing into an earlier result.
func joinKey(prefix, key []byte) []byte {
	out := make([]byte, len(prefix)+len(key))
	copy(out, prefix)
	copy(out[len(prefix):], key)
	return out
}

// prefixRange returns the iterator bounds covering every key starting
// with prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// carry over 0xFF bytes
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// an all 0xFF prefix has no upper bound
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}

// queryPrefix returns all entries whose key starts with prefix.
func queryPrefix(db weave.ReadOnlyKVStore, prefix []byte) ([]weave.Model, error) {
	itr, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return consumeIterator(itr)
}

// consumeIterator drains and releases itr.
func consumeIterator(itr weave.Iterator) ([]weave.Model, error) {
	defer itr.Release()

	var res []weave.Model
	for {
		k, v, err := itr.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, weave.Pair(k, v))
	}
}
