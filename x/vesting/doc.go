/*
Package vesting implements a custodial vesting pool.

A sender creates a pool that names an asset, a fixed amount, a lock period
and a list of approvers. Deposit moves the amount from the sender into a
vault that belongs to no key. Once a quorum of approvers nominated a
recipient and the lock period elapsed since the deposit, the recipient
claims the funds. Only a claim can move funds out of a vault.

A pool advances through Created, Deposited, Nominated and Claimed. It never
goes back and never skips a stage. Claimed is final.
*/
package vesting
