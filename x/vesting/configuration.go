package vesting

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/gconf"
	"github.com/iov-one/vestengine/x"
)

const (
	confPkg = "vesting"

	pathUpdateConfigurationMsg = "vesting/update_configuration"
)

// Configuration bounds the pools this package accepts.
type Configuration struct {
	// Owner may update the configuration.
	Owner weave.Address `json:"owner"`
	// MaxSigners is the greatest signer capacity a pool can request.
	MaxSigners uint32 `json:"max_signers"`
	// MinLockPeriod is the shortest lock period in seconds.
	MinLockPeriod int64 `json:"min_lock_period"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// DefaultConfiguration is used when the genesis did not configure the
// package.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxSigners:    10,
		MinLockPeriod: 1,
	}
}

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if c.Owner != nil {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if c.MaxSigners == 0 || c.MaxSigners > MaxCapacity {
		return errors.Wrapf(errors.ErrInput, "max signers must be between 1 and %d", MaxCapacity)
	}
	if c.MinLockPeriod < 1 {
		return errors.Wrap(errors.ErrInput, "min lock period must be positive")
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, c.Owner)
	e.Uint64(2, uint64(c.MaxSigners))
	e.Int64(3, c.MinLockPeriod)
	return e.Result(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			c.Owner, err = f.Bytes()
		case 2:
			var v uint64
			v, err = f.Uint64()
			if v > MaxCapacity {
				return errors.Wrapf(errors.ErrInput, "max signers %d", v)
			}
			c.MaxSigners = uint32(v)
		case 3:
			c.MinLockPeriod, err = f.Int64()
		}
		return err
	})
}

// loadConf returns the stored configuration, or the default one if none
// was stored.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, errors.Wrap(err, "load configuration")
	}
}

// UpdateConfigurationMsg patches the stored configuration. Zero fields of
// the patch keep their current value.
type UpdateConfigurationMsg struct {
	Patch *Configuration
}

var _ gconf.PatchMsg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if m.Patch.Owner != nil {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if m.Patch.MaxSigners > MaxCapacity {
		return errors.Wrapf(errors.ErrInput, "max signers must not exceed %d", MaxCapacity)
	}
	if m.Patch.MinLockPeriod < 0 {
		return errors.Wrap(errors.ErrInput, "negative min lock period")
	}
	return nil
}

// ConfigPatch returns the patch or nil.
func (m *UpdateConfigurationMsg) ConfigPatch() gconf.OwnedConfig {
	if m.Patch == nil {
		return nil
	}
	return m.Patch
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	if m.Patch != nil {
		if err := e.Message(1, m.Patch); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		m.Patch = new(Configuration)
		return f.Message(m.Patch)
	})
}

// NewConfigHandler returns a handler that applies configuration patches
// signed by the configuration owner. Before the configuration exists, the
// patch must be signed by initAdmin, if given, and is applied on top of
// the default configuration.
func NewConfigHandler(auth x.Authenticator, initAdmin weave.Address) weave.Handler {
	fresh := func() gconf.OwnedConfig {
		conf := DefaultConfiguration()
		return &conf
	}
	return gconf.NewUpdateConfigurationHandler(confPkg, fresh, auth, initAdmin)
}

// Initializer stores the configuration found in the genesis file.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis saves opts["conf"]["vesting"] if present. Without it the
// default configuration applies.
func (Initializer) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(kv, opts, confPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
