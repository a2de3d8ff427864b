package gconf

import (
	"context"
	"encoding/json"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/iov-one/vestengine/weavetest/assert"
)

// testConfig is a minimal owned configuration.
type testConfig struct {
	Owner weave.Address `json:"owner"`
	Limit int64         `json:"limit"`
	Name  string        `json:"name"`
}

func (c *testConfig) GetOwner() weave.Address { return c.Owner }

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.Wrap(errors.ErrInput, "negative limit")
	}
	if c.Owner != nil {
		return c.Owner.Validate()
	}
	return nil
}

func (c *testConfig) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.Bytes(1, c.Owner)
	e.Int64(2, c.Limit)
	e.String(3, c.Name)
	return e.Result(), nil
}

func (c *testConfig) Unmarshal(raw []byte) error {
	*c = testConfig{}
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		var err error
		switch num {
		case 1:
			var b []byte
			b, err = f.Bytes()
			c.Owner = b
		case 2:
			c.Limit, err = f.Int64()
		case 3:
			c.Name, err = f.String()
		}
		return err
	})
}

func TestSaveLoad(t *testing.T) {
	owner := weavetest.RandomAddr(t)
	cases := map[string]struct {
		conf        *testConfig
		wantSaveErr *errors.Error
		wantLoadErr *errors.Error
	}{
		"full": {
			conf: &testConfig{Owner: owner, Limit: 12, Name: "x"},
		},
		"zero values": {
			conf: &testConfig{},
		},
		"invalid configuration cannot be saved": {
			conf:        &testConfig{Limit: -1},
			wantSaveErr: errors.ErrInput,
			wantLoadErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "test", tc.conf); !tc.wantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %+v", err)
			}
			var got testConfig
			if err := Load(db, "test", &got); !tc.wantLoadErr.Is(err) {
				t.Fatalf("unexpected load error: %+v", err)
			}
			if tc.wantLoadErr == nil {
				assert.Equal(t, *tc.conf, got)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.RandomAddr(t)
	genesis := `{"conf": {"test": {"owner": "` + owner.String() + `", "limit": 7}}}`
	var opts weave.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "test", &testConfig{}))

	var got testConfig
	assert.Nil(t, Load(db, "test", &got))
	assert.Equal(t, testConfig{Owner: owner, Limit: 7}, got)

	err := InitConfig(db, opts, "missing", &testConfig{})
	assert.IsErr(t, errors.ErrNotFound, err)
}

// updateMsg carries a configuration patch.
type updateMsg struct {
	weavetest.Msg
	Patch *testConfig
}

func (m *updateMsg) ConfigPatch() OwnedConfig {
	if m.Patch == nil {
		return nil
	}
	return m.Patch
}

func TestUpdateConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	admin := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	cases := map[string]struct {
		initial  *testConfig
		signer   weave.Condition
		patch    *testConfig
		wantErr  *errors.Error
		wantConf testConfig
	}{
		"owner updates a field": {
			initial:  &testConfig{Owner: owner.Address(), Limit: 1, Name: "a"},
			signer:   owner,
			patch:    &testConfig{Limit: 5},
			wantConf: testConfig{Owner: owner.Address(), Limit: 5, Name: "a"},
		},
		"stranger cannot update": {
			initial:  &testConfig{Owner: owner.Address(), Limit: 1},
			signer:   stranger,
			patch:    &testConfig{Limit: 5},
			wantErr:  errors.ErrUnauthorized,
			wantConf: testConfig{Owner: owner.Address(), Limit: 1},
		},
		"admin creates the missing configuration": {
			signer:   admin,
			patch:    &testConfig{Owner: owner.Address(), Limit: 3},
			wantConf: testConfig{Owner: owner.Address(), Limit: 3},
		},
		"admin cannot update an existing configuration": {
			initial:  &testConfig{Owner: owner.Address(), Limit: 1},
			signer:   admin,
			patch:    &testConfig{Limit: 5},
			wantErr:  errors.ErrUnauthorized,
			wantConf: testConfig{Owner: owner.Address(), Limit: 1},
		},
		"missing patch": {
			initial:  &testConfig{Owner: owner.Address(), Limit: 1},
			signer:   owner,
			wantErr:  errors.ErrState,
			wantConf: testConfig{Owner: owner.Address(), Limit: 1},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.initial != nil {
				assert.Nil(t, Save(db, "test", tc.initial))
			}
			auth := &weavetest.Auth{Signer: tc.signer}
			h := NewUpdateConfigurationHandler("test", func() OwnedConfig { return &testConfig{} }, auth, admin.Address())

			tx := &weavetest.Tx{Msg: &updateMsg{Patch: tc.patch}}
			cache := db.CacheWrap()
			_, err := h.Deliver(context.Background(), cache, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err == nil {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}

			var got testConfig
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, tc.wantConf, got)
		})
	}
}

func TestUpdateConfigurationWithoutAdmin(t *testing.T) {
	signer := weavetest.NewCondition()
	h := NewUpdateConfigurationHandler("test", func() OwnedConfig { return &testConfig{} }, &weavetest.Auth{Signer: signer}, nil)

	tx := &weavetest.Tx{Msg: &updateMsg{Patch: &testConfig{Owner: signer.Address()}}}
	_, err := h.Check(context.Background(), store.MemStore(), tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestUpdateConfigurationRejectsForeignMessage(t *testing.T) {
	owner := weavetest.NewCondition()
	db := store.MemStore()
	assert.Nil(t, Save(db, "test", &testConfig{Owner: owner.Address()}))
	h := NewUpdateConfigurationHandler("test", func() OwnedConfig { return &testConfig{} }, &weavetest.Auth{Signer: owner}, nil)

	_, err := h.Check(context.Background(), db, &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/other"}})
	assert.IsErr(t, errors.ErrMsg, err)
}
