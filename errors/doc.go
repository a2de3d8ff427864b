/*
Package errors implements the error model used by every extension.

Errors are categorized by a small set of root errors, each registered with a
unique ABCI code. Extensions declare their own root errors with
Register(code, description) during program startup. Runtime errors wrap one
of the root errors to add context:

	return errors.Wrapf(errors.ErrNotFound, "pool %X", base)

The root cause can always be tested with the Is method:

	if errors.ErrNotFound.Is(err) { ... }

The innermost Wrap call attaches a stack trace. Use fmt's %+v verb to print
it.
*/
package errors
