/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of Model, stored under an
8 byte sequence key or any other primary key, and may maintain
any number of secondary indexes over them.
*/
package orm
