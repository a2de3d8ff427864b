/*
Package utils provides the decorators every application stack uses:
panic recovery, transaction logging and savepoints.
*/
package utils
