package redisstore

import "github.com/redis/go-redis/v9"

// KEYS: link hash, created index, id sequence.
// ARGV: code, target url, created_at (unix micros).
// Returns the new id, or 0 when the code is taken.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local id = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1],
	'id', id,
	'code', ARGV[1],
	'target_url', ARGV[2],
	'clicks', 0,
	'created_at', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
return id
`)

// KEYS: link hash. ARGV: click time (unix micros).
// Timestamps stay strings; Lua numbers would print them in exponent form.
var resolveScript = redis.NewScript(`
local created = redis.call('HGET', KEYS[1], 'created_at')
if not created then
	return false
end
local at = ARGV[1]
if tonumber(created) > tonumber(at) then
	at = created
end
redis.call('HINCRBY', KEYS[1], 'clicks', 1)
redis.call('HSET', KEYS[1], 'last_clicked_at', at)
return redis.call('HGET', KEYS[1], 'target_url')
`)

// KEYS: link hash, created index. ARGV: code.
var deleteScript = redis.NewScript(`
if redis.call('DEL', KEYS[1]) == 0 then
	return 0
end
redis.call('ZREM', KEYS[2], ARGV[1])
return 1
`)
