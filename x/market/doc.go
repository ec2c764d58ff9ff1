/*
Package market implements the market ledger: fixed price listings of
registry tokens.

Listing a token moves it into the market escrow and charges the listing fee.
A sale moves the token from escrow to the buyer and the payment from the
buyer to the seller in one step. Items go from listed to sold and never
back; listing a token again after a sale creates a new item.
*/
package market
