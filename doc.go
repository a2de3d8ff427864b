/*
Package weave defines the interfaces shared by every extension of the vesting
engine: storage, transactions, handlers and decorators, conditions and
addresses, and the values carried in the request context.

Extensions under x/ implement handlers for their messages and are combined
into an application stack by the app package.
*/
package weave
