/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary key index and may possess secondary indexes.
* Easy queries for one entity and iteration over ranges.
*/
package orm
