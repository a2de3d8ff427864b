/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object, serialized and stored
under a key derived from the extension name. The initial value is loaded
from the "conf" section of the genesis file. An extension may register
an UpdateConfigurationHandler so that the configuration owner can change
it later.
*/
package gconf
