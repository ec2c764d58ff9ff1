/*
Package cash keeps the wallets that all payments of the marketplace move
between. A wallet is a set of coins stored under the owner address.
*/
package cash
