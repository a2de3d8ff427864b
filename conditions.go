package weave

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/vestengine/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the width of a sha256 digest. Ledger identifiers such
// as pool and account addresses have the same width.
const AddressLength = 32

// conditionFormat is "extension/type/data". The (?s) flag lets data hold
// any byte, newlines included.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition names a party able to authorize an action, for example
// "sigs/ed25519/<pubkey>" or "vesting/vault/<base>". Its Address is the
// account the party controls.
type Condition []byte

// NewCondition builds the condition ext/typ/data.
func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+len(data)+2)
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits c into its extension, type and data.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.Wrapf(errors.ErrInput, "condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

func (c Condition) Validate() error {
	_, _, _, err := c.Parse()
	return err
}

func (c Condition) Address() Address        { return NewAddress(c) }
func (c Condition) Equals(o Condition) bool { return bytes.Equal(c, o) }

// String prints the data part in hex.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal("")
	}
	return json.Marshal(c.String())
}

func (c *Condition) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	cond, err := parseCondition(s)
	if err != nil {
		return err
	}
	*c = cond
	return nil
}

// parseCondition reads the String form. An empty string is a nil
// condition.
func parseCondition(s string) (Condition, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil, errors.Wrapf(errors.ErrInput, "condition %q is not ext/type/data", s)
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "condition data: %s", err)
	}
	return NewCondition(parts[0], parts[1], data), nil
}

// Address is the sha256 digest of a Condition.
type Address []byte

// NewAddress returns the address derived from data, or nil for nil data.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return sum[:]
}

func (a Address) Equals(o Address) bool { return bytes.Equal(a, o) }

func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: %v", a)
	}
	return nil
}

// String returns the upper case hex form, or "(nil)".
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Base58 is the form ledger wallets show for 32 byte keys.
func (a Address) Base58() string {
	return base58.Encode(a)
}

// Bech32 encodes a under the human readable part hrp.
func (a Address) Bech32(hrp string) (string, error) {
	groups, err := bech32.ConvertBits(a, 8, 5, true)
	if err == nil {
		var enc string
		if enc, err = bech32.Encode(hrp, groups); err == nil {
			return enc, nil
		}
	}
	return "", errors.Wrap(errors.ErrInput, err.Error())
}

// MarshalJSON writes the hex form instead of base64.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// addressDecoders maps a ParseAddress prefix to its decoder.
var addressDecoders = map[string]func(string) ([]byte, error){
	"hex":    hex.DecodeString,
	"base58": base58.Decode,
	"bech32": func(s string) ([]byte, error) {
		_, groups, err := bech32.Decode(s)
		if err != nil {
			return nil, err
		}
		return bech32.ConvertBits(groups, 5, 8, false)
	},
	"cond": func(s string) ([]byte, error) {
		c, err := parseCondition(s)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Address(), nil
	},
}

// ParseAddress reads a human readable address. A "hex:", "base58:",
// "bech32:" or "cond:" prefix picks the encoding, hex is the default. An
// empty value is a nil address.
func ParseAddress(s string) (Address, error) {
	format, enc := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, enc = s[:i], s[i+1:]
	}
	decode, ok := addressDecoders[format]
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "unknown address format %q", format)
	}
	if enc == "" {
		return nil, nil
	}
	raw, err := decode(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode %s address: %s", format, err)
	}
	addr := Address(raw)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}
