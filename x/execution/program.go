package execution

import (
	"fmt"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Program is the target of a sub-call.
type Program interface {
	Check(ctx weave.Context, db weave.KVStore, call *Call) (*weave.CheckResult, error)
	Deliver(ctx weave.Context, db weave.KVStore, call *Call) (*weave.DeliverResult, error)
}

// ProgramID returns the address a program registered under name is
// targeted by.
func ProgramID(name string) weave.Address {
	return weave.NewCondition("execution", "program", []byte(name)).Address()
}

// Programs maps target addresses to programs.
type Programs struct {
	byID map[string]Program
}

// NewPrograms returns an empty program set.
func NewPrograms() *Programs {
	return &Programs{byID: make(map[string]Program)}
}

// Register makes the program callable as ProgramID(name). Registering a
// name twice panics.
func (p *Programs) Register(name string, prog Program) {
	id := string(ProgramID(name))
	if _, ok := p.byID[id]; ok {
		panic(fmt.Sprintf("program %q registered twice", name))
	}
	p.byID[id] = prog
}

// Lookup returns the program registered for the target.
func (p *Programs) Lookup(target weave.Address) (Program, error) {
	prog, ok := p.byID[string(target)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTarget, "%s", target)
	}
	return prog, nil
}

// MsgDecoder decodes a sub-call payload into a message.
type MsgDecoder func(payload []byte) (weave.Msg, error)

// HandlerProgram exposes a weave.Handler as a program. The payload is
// decoded into a message and processed as if it was a transaction of its
// own.
type HandlerProgram struct {
	handler weave.Handler
	decode  MsgDecoder
}

var _ Program = HandlerProgram{}

// NewHandlerProgram returns a program that decodes payloads with decode
// and passes them to h.
func NewHandlerProgram(h weave.Handler, decode MsgDecoder) HandlerProgram {
	return HandlerProgram{handler: h, decode: decode}
}

func (p HandlerProgram) Check(ctx weave.Context, db weave.KVStore, call *Call) (*weave.CheckResult, error) {
	tx, err := p.tx(call)
	if err != nil {
		return nil, err
	}
	return p.handler.Check(ctx, db, tx)
}

func (p HandlerProgram) Deliver(ctx weave.Context, db weave.KVStore, call *Call) (*weave.DeliverResult, error) {
	tx, err := p.tx(call)
	if err != nil {
		return nil, err
	}
	return p.handler.Deliver(ctx, db, tx)
}

func (p HandlerProgram) tx(call *Call) (*CallTx, error) {
	msg, err := p.decode(call.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode payload")
	}
	return &CallTx{Msg: msg, Accounts: call.Accounts}, nil
}

// CallTx is the transaction a handler program sees for a sub-call.
type CallTx struct {
	Msg      weave.Msg
	Accounts []AccountMeta
}

var _ weave.Tx = (*CallTx)(nil)

func (tx *CallTx) GetMsg() (weave.Msg, error) {
	return tx.Msg, nil
}

func (tx *CallTx) Marshal() ([]byte, error) {
	return nil, errors.Wrap(errors.ErrHuman, "sub-call transactions are not serialized")
}

func (tx *CallTx) Unmarshal([]byte) error {
	return errors.Wrap(errors.ErrHuman, "sub-call transactions are not serialized")
}
