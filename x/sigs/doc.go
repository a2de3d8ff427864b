/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

A signature is an ed25519 signature over the sha512 digest of

	version | len(chainID) | chainID | sequence | serialized message

Verified signers are placed in the context and exposed through Authenticate.
*/
package sigs
