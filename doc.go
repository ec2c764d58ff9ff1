/*
Package volreg defines the interfaces shared by all marketplace components:
account identities (Condition and Address), key value storage and its
cache wrapping, and the default logger.

The Token Registry (x/registry) and the Market Ledger (x/market) are built on
top of these interfaces and are bound together by the app package, which acts
as the single sequencer of all state changes.
*/
package volreg
