package execution_test

import (
	"context"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/execution"
	. "github.com/smartystreets/goconvey/convey"
)

func decodeSend(raw []byte) (weave.Msg, error) {
	var msg cash.SendMsg
	return &msg, msg.Unmarshal(raw)
}

func decodeAny(raw []byte) (weave.Msg, error) {
	return &weavetest.Msg{RoutePath: "test/write", Serialized: raw}, nil
}

func sendCall(src, dst, asset weave.Address, amount uint64) execution.Call {
	payload, err := (&cash.SendMsg{Source: src, Destination: dst, Asset: asset, Amount: amount}).Marshal()
	if err != nil {
		panic(err)
	}
	return execution.Call{
		Target: execution.ProgramID("cash"),
		Accounts: []execution.AccountMeta{
			{Address: src, IsSigner: true, IsWritable: true},
			{Address: dst, IsWritable: true},
		},
		Payload: payload,
	}
}

func TestExecuteHandler(t *testing.T) {
	Convey("Given an execution handler with a cash program", t, func() {
		db := store.MemStore()
		auth := &weavetest.CtxAuth{Key: "auth"}
		ctrl := cash.NewController(cash.NewBucket())

		programs := execution.NewPrograms()
		programs.Register("cash", execution.NewHandlerProgram(cash.NewSendHandler(auth, ctrl), decodeSend))
		programs.Register("write", execution.NewHandlerProgram(
			&weavetest.WriteHandler{Key: []byte("written"), Value: []byte("1")}, decodeAny))
		programs.Register("fail", execution.NewHandlerProgram(
			&weavetest.WriteHandler{Key: []byte("failed"), Value: []byte("1"), Err: errors.ErrState}, decodeAny))
		h := execution.NewExecuteHandler(auth, programs)

		alice := weavetest.NewCondition()
		bob := weavetest.NewCondition()
		carol := weavetest.NewCondition()
		asset := weavetest.NewCondition().Address()
		So(ctrl.Issue(db, alice.Address(), asset, 100), ShouldBeNil)

		balance := func(a weave.Address) uint64 {
			n, err := ctrl.Balance(db, a, asset)
			So(err, ShouldBeNil)
			return n
		}
		dump := func() []weave.Model {
			models, err := store.Dump(db)
			So(err, ShouldBeNil)
			return models
		}
		deliver := func(ctx weave.Context, calls ...execution.Call) error {
			_, err := h.Deliver(ctx, db, &weavetest.Tx{Msg: &execution.ExecuteMsg{Calls: calls}})
			return err
		}
		ctx := auth.SetConditions(context.Background(), alice, bob)

		Convey("Calls run in order and see the writes of earlier calls", func() {
			err := deliver(ctx,
				sendCall(alice.Address(), bob.Address(), asset, 60),
				sendCall(bob.Address(), carol.Address(), asset, 50),
			)
			So(err, ShouldBeNil)
			So(balance(alice.Address()), ShouldEqual, uint64(40))
			So(balance(bob.Address()), ShouldEqual, uint64(10))
			So(balance(carol.Address()), ShouldEqual, uint64(50))
		})

		Convey("A failing call drops the writes of all earlier calls", func() {
			before := dump()
			err := deliver(ctx,
				execution.Call{Target: execution.ProgramID("write")},
				sendCall(alice.Address(), bob.Address(), asset, 10),
				execution.Call{Target: execution.ProgramID("fail")},
				sendCall(alice.Address(), carol.Address(), asset, 10),
			)
			So(errors.ErrState.Is(err), ShouldBeTrue)
			So(dump(), ShouldResemble, before)
			So(balance(alice.Address()), ShouldEqual, uint64(100))
		})

		Convey("A call that cannot be paid aborts the batch", func() {
			before := dump()
			err := deliver(ctx,
				sendCall(alice.Address(), bob.Address(), asset, 60),
				sendCall(alice.Address(), bob.Address(), asset, 60),
			)
			So(errors.ErrInsufficientAmount.Is(err), ShouldBeTrue)
			So(dump(), ShouldResemble, before)
		})

		Convey("An unauthenticated caller cannot execute anything", func() {
			before := dump()
			err := deliver(context.Background(), execution.Call{Target: execution.ProgramID("write")})
			So(execution.ErrInvalidSigner.Is(err), ShouldBeTrue)
			So(dump(), ShouldResemble, before)
		})

		Convey("A signer account must be held by the caller", func() {
			before := dump()
			aliceOnly := auth.SetConditions(context.Background(), alice)
			err := deliver(aliceOnly,
				execution.Call{Target: execution.ProgramID("write")},
				sendCall(bob.Address(), carol.Address(), asset, 1),
			)
			So(execution.ErrInvalidSigner.Is(err), ShouldBeTrue)
			So(dump(), ShouldResemble, before)
		})

		Convey("Authority that is not tagged is still checked by the program", func() {
			call := sendCall(carol.Address(), alice.Address(), asset, 1)
			call.Accounts[0].IsSigner = false
			So(ctrl.Issue(db, carol.Address(), asset, 5), ShouldBeNil)
			err := deliver(ctx, call)
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
			So(balance(carol.Address()), ShouldEqual, uint64(5))
		})

		Convey("An unknown target fails before any call runs", func() {
			before := dump()
			err := deliver(ctx,
				execution.Call{Target: execution.ProgramID("write")},
				execution.Call{Target: execution.ProgramID("missing")},
			)
			So(execution.ErrUnknownTarget.Is(err), ShouldBeTrue)
			So(dump(), ShouldResemble, before)
		})

		Convey("Check validates every call without delivering", func() {
			tx := &weavetest.Tx{Msg: &execution.ExecuteMsg{Calls: []execution.Call{
				sendCall(alice.Address(), bob.Address(), asset, 60),
			}}}
			_, err := h.Check(ctx, db, tx)
			So(err, ShouldBeNil)
			So(balance(alice.Address()), ShouldEqual, uint64(100))

			tx.Msg = &execution.ExecuteMsg{Calls: []execution.Call{{Target: execution.ProgramID("fail")}}}
			_, err = h.Check(ctx, db, tx)
			So(errors.ErrState.Is(err), ShouldBeTrue)
		})
	})
}

func TestProgramsRegisterTwice(t *testing.T) {
	Convey("Registering the same program name twice panics", t, func() {
		programs := execution.NewPrograms()
		programs.Register("dup", execution.NewHandlerProgram(&weavetest.Handler{}, decodeAny))
		So(func() {
			programs.Register("dup", execution.NewHandlerProgram(&weavetest.Handler{}, decodeAny))
		}, ShouldPanic)
	})
}
