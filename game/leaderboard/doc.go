// Package leaderboard stores final game scores per variant.
//
// MemoryStore keeps entries in process memory and is the default.
// RedisStore keeps them in one sorted set per variant so scores survive
// restarts and can be shared between server instances. Both satisfy
// service.LeaderboardStore and keep at most a fixed number of entries.
package leaderboard
