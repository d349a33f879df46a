// Package redis connects to a Redis server with retry and exposes a
// health check. The application uses Redis only as a cache store, so a
// connection failure here is tolerated: caching degrades to misses.
package redis
