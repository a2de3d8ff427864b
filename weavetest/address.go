package weavetest

import (
	"crypto/rand"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/crypto"
)

// RandomAddr returns a fresh address nobody holds a key for.
func RandomAddr(t testing.TB) weave.Address {
	t.Helper()
	addr := make(weave.Address, weave.AddressLength)
	if _, err := rand.Read(addr); err != nil {
		t.Fatalf("random address: %s", err)
	}
	return addr
}

// NewKey generates an ed25519 key.
func NewKey() crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition is the signature condition of a key generated on the spot.
func NewCondition() weave.Condition {
	return NewKey().PublicKey().Condition()
}
