/*
Package execution runs an ordered batch of sub-calls on behalf of the
authenticated caller of a transaction.

Every sub-call names a registered program, the accounts it touches and an
opaque payload. The caller's authority is forwarded to each program
unchanged. The batch fails fast: the first failing sub-call aborts it and
none of the writes of the earlier sub-calls are kept.
*/
package execution
