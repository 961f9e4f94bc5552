// Package redisstore shares trigger dedupe claims between instances through
// Redis.
package redisstore
