/*
Package commands implements the volreg command line.

Every command opens the store found in the home directory, applies a single
engine operation and closes the store again. Accounts are referenced either
by the name of a key created with "keys new" or by an address.
*/
package commands
