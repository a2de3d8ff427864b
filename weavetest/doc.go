/*
Package weavetest provides mocks and helpers for testing handlers,
decorators and anything else that works with the weave interfaces.
*/
package weavetest
