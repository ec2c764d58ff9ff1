/*
Package app binds the token registry, the market ledger and the wallets
into a single Engine.

The Engine is the only sequencer of state changes. Every mutating call runs
under a write lock inside a fresh cache wrap of the committed store. The
cache wrap is written and committed as a new version only when the whole
operation succeeded, otherwise it is discarded and the state is left
untouched. Reads run concurrently under a read lock.
*/
package app
