package crypto

import (
	"encoding/hex"
	"encoding/json"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is the condition extension of signature based
// conditions.
const ExtensionName = "sigs"

// PubKey checks signatures and names the condition a valid signature
// proves.
type PubKey interface {
	Verify(message, sig []byte) bool
	Condition() weave.Condition
}

// Signer signs without exposing its key material, so a hardware wallet
// can implement it.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() PublicKey
}

// PublicKey is an ed25519 public key.
type PublicKey []byte

var _ PubKey = PublicKey(nil)

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition encodes the public key into a weave condition
func (p PublicKey) Condition() weave.Condition {
	return weave.NewCondition(ExtensionName, "ed25519", p)
}

// Address returns the address controlled by this key.
func (p PublicKey) Address() weave.Address {
	return p.Condition().Address()
}

// Validate returns an error if the key has not the ed25519 size.
func (p PublicKey) Validate() error {
	if len(p) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key length %d", len(p))
	}
	return nil
}

// PrivateKey is an ed25519 private key.
type PrivateKey []byte

var _ Signer = PrivateKey(nil)

// Sign returns a matching signature for this private key
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key length %d", len(p))
	}
	return ed25519.Sign(ed25519.PrivateKey(p), message), nil
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// MarshalJSON stores the key as a hex string, which is how key files are
// written to disk.
func (p PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p))
}

func (p *PrivateKey) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode hex: %s", err)
	}
	if len(b) != ed25519.PrivateKeySize {
		return errors.Wrapf(errors.ErrInput, "private key length %d", len(b))
	}
	*p = b
	return nil
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) PrivateKey {
	return PrivateKey(ed25519.NewKeyFromSeed(seed))
}
