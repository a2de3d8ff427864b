/*
Package vestd links together all the various components
to construct the vestd app.
*/
package vestd

import (
	"context"
	"path/filepath"
	"strings"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/app"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store/iavl"
	"github.com/iov-one/vestengine/x"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/execution"
	"github.com/iov-one/vestengine/x/sigs"
	"github.com/iov-one/vestengine/x/utils"
	"github.com/iov-one/vestengine/x/vesting"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// A failed tx leaves no trace, not even a bumped signer sequence.
		// The same signed bytes can therefore be delivered again later,
		// until a tx from that signer succeeds with this nonce.
		utils.NewSavepoint().OnCheck().OnDeliver(),
		sigs.NewDecorator(),
	)
}

// Programs returns the programs available to the execution engine.
func Programs(authFn x.Authenticator, ctrl cash.Controller) *execution.Programs {
	p := execution.NewPrograms()
	p.Register("cash", execution.NewHandlerProgram(cash.NewSendHandler(authFn, ctrl), decodeSend))
	return p
}

// SendCall returns a call of the cash program moving amount of asset from
// src to dst. The source account must sign.
func SendCall(src, dst, asset weave.Address, amount uint64) (execution.Call, error) {
	payload, err := (&cash.SendMsg{Source: src, Destination: dst, Asset: asset, Amount: amount}).Marshal()
	if err != nil {
		return execution.Call{}, err
	}
	return execution.Call{
		Target: execution.ProgramID("cash"),
		Accounts: []execution.AccountMeta{
			{Address: src, IsSigner: true, IsWritable: true},
			{Address: dst, IsWritable: true},
		},
		Payload: payload,
	}, nil
}

func decodeSend(payload []byte) (weave.Msg, error) {
	var msg cash.SendMsg
	if err := msg.Unmarshal(payload); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Router returns a default router, dispatching to all messages of this
// application.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := cash.NewController(cash.NewBucket())
	cash.RegisterRoutes(r, authFn, ctrl)
	sigs.RegisterRoutes(r, authFn)
	vesting.RegisterRoutes(r, authFn, ctrl)
	execution.RegisterRoutes(r, authFn, Programs(authFn, ctrl))
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/holdings", "/auth", "/pools", "/pools/sender"
// and "/pools/signer"
func QueryRouter() weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		vesting.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis loaders of every package that keeps
// state from the genesis file.
func Initializers() weave.Initializer {
	return weave.ChainInitializers(
		cash.Initializer{},
		vesting.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() weave.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h weave.Handler,
	tx weave.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (weave.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}

// GenerateApp creates the application backed by a database in the home
// directory. An empty home uses an in memory database.
func GenerateApp(home string, logger log.Logger, debug bool) (app.BaseApp, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "vestd.db")
	}

	application, err := Application("vestd", Stack(), TxDecoder, dbPath, debug)
	if err != nil {
		return app.BaseApp{}, err
	}
	application.WithInit(Initializers())
	application.WithLogger(logger)
	return application, nil
}
