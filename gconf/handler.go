package gconf

import (
	"reflect"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// OwnedConfig is a configuration that names the address allowed to change
// it.
type OwnedConfig interface {
	Configuration
	GetOwner() weave.Address
}

// PatchMsg is a message carrying a partial configuration. ConfigPatch
// returns nil when the message holds no patch.
type PatchMsg interface {
	weave.Msg
	ConfigPatch() OwnedConfig
}

// UpdateConfigurationHandler merges a configuration patch into the stored
// configuration of one package. Only non zero fields of the patch are
// applied.
type UpdateConfigurationHandler struct {
	pkg       string
	fresh     func() OwnedConfig
	auth      x.Authenticator
	initAdmin weave.Address
}

var _ weave.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns the update handler of pkg. fresh
// must return a new configuration instance every call, holding the values
// used when nothing was stored yet.
//
// An existing configuration can only be changed by its owner. A missing
// one can only be created by initAdmin. Without initAdmin the
// configuration must come from the genesis.
func NewUpdateConfigurationHandler(
	pkg string,
	fresh func() OwnedConfig,
	auth x.Authenticator,
	initAdmin weave.Address,
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		fresh:     fresh,
		auth:      auth,
		initAdmin: initAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	conf, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("configuration updated", "package", h.pkg, "owner", conf.GetOwner())
	return &weave.DeliverResult{}, nil
}

// apply authorizes the change, merges the patch and saves the result.
func (h UpdateConfigurationHandler) apply(ctx weave.Context, db weave.KVStore, tx weave.Tx) (OwnedConfig, error) {
	conf, err := h.authorized(ctx, db)
	if err != nil {
		return nil, err
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "get msg")
	}
	pm, ok := msg.(PatchMsg)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "%T carries no configuration patch", msg)
	}
	if err := pm.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	patch := pm.ConfigPatch()
	if patch == nil {
		return nil, errors.Wrap(errors.ErrState, "patch is required")
	}
	if err := merge(conf, patch); err != nil {
		return nil, err
	}
	if err := Save(db, h.pkg, conf); err != nil {
		return nil, errors.Wrap(err, "save")
	}
	return conf, nil
}

// authorized returns the configuration the patch applies to, after making
// sure the right party signed.
func (h UpdateConfigurationHandler) authorized(ctx weave.Context, db weave.ReadOnlyKVStore) (OwnedConfig, error) {
	conf := h.fresh()
	switch err := Load(db, h.pkg, conf); {
	case err == nil:
		owner := conf.GetOwner()
		if owner == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
		}
		if !h.auth.HasAddress(ctx, owner) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
		}
		return conf, nil
	case errors.ErrNotFound.Is(err):
		if h.initAdmin == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be created")
		}
		if !h.auth.HasAddress(ctx, h.initAdmin) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
		}
		return h.fresh(), nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}

// merge copies every non zero field of patch into conf. Both must point
// to the same struct type.
func merge(conf, patch OwnedConfig) error {
	dst := reflect.ValueOf(conf)
	src := reflect.ValueOf(patch)
	if dst.Type() != src.Type() || dst.Kind() != reflect.Ptr || dst.Elem().Kind() != reflect.Struct {
		return errors.Wrapf(errors.ErrMsg, "cannot patch %T with %T", conf, patch)
	}
	dst, src = dst.Elem(), src.Elem()
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); !f.IsZero() {
			dst.Field(i).Set(f)
		}
	}
	return nil
}
