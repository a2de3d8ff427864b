/*
Package x contains helpers shared by the extensions.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct an application.
Sub-packages hold the asset ledger (cash), signature
authentication (sigs), vesting pools (vesting) and the batch
execution engine (execution).

Handlers never depend on a concrete authentication mechanism. They
receive an Authenticator and ask it which conditions signed the
transaction.
*/
package x
