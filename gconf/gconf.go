package gconf

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// ReadStore is the read part of weave.ReadOnlyKVStore Load needs.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of weave.KVStore Save needs.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler can check and serialize itself.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler replaces its whole state with the decoded raw form.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is the stored configuration of one package.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// storeKey is the singleton key of the configuration of pkg.
func storeKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates src and stores it as the configuration of pkg.
func Save(db Store, pkg string, src ValidMarshaler) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s configuration", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return db.Set(storeKey(pkg), raw)
}

// Load decodes the configuration of pkg into dst. It fails with
// ErrNotFound if none was saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := db.Get(storeKey(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s configuration", pkg)
	}
	return nil
}

// InitConfig saves the genesis value found at opts["conf"][pkg]. It fails
// with ErrNotFound when the genesis has no such section, letting the
// caller fall back to its defaults.
func InitConfig(db Store, opts weave.Options, pkg string, conf Configuration) error {
	var sections weave.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if sections[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no %s configuration in genesis", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read %s configuration", pkg)
	}
	return Save(db, pkg, conf)
}
