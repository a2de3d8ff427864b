/*
Package cash keeps fungible asset holdings.

Every (holder, asset) pair owns a single unsigned balance. Assets are
identified by 32 byte addresses, the same as holders. Balances only move
through the Controller, which requires the source holder to be authorized
in the current context. Initial balances are minted from the genesis file.
*/
package cash
