/*
Package registry implements the token registry: a catalog of unique tokens
with a single owner each.

Tokens are minted with dense sequential ids starting at 1. Minting a public
token costs the configured mint price, which is forwarded to the registry
admin. Private tokens are minted for free. Token ownership can be changed by
the owner or by the configured market identity, which is the only one
allowed to move tokens into or out of its escrow.
*/
package registry
