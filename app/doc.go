/*
Package app contains the pieces that turn handlers into an ABCI
application: a message router, the decorator chain, a commit store that
keeps separate check and deliver caches, and the StoreApp/BaseApp pair
implementing the abci.Application interface.
*/
package app
