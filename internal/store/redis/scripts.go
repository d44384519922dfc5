package redisstore

import "github.com/redis/go-redis/v9"

// createScript appends one event atomically.
// KEYS[1] = events hash (id -> record)
// KEYS[2] = global position hash (id -> 1-based position)
// KEYS[3] = global list of ids
// KEYS[4] = stream list of ids
// KEYS[5] = stream position hash (id -> 1-based stream offset)
// ARGV[1] = event id
// ARGV[2] = encoded record
// Returns the global position, or an error reply "DUPLICATE".
var createScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
    return redis.error_reply("DUPLICATE")
end
local pos = redis.call("RPUSH", KEYS[3], ARGV[1])
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("HSET", KEYS[2], ARGV[1], pos)
local off = redis.call("RPUSH", KEYS[4], ARGV[1])
redis.call("HSET", KEYS[5], ARGV[1], off)
return pos
`)

// readScript returns one window of an ordering, global or per stream.
// KEYS[1] = list of ids in the ordering
// KEYS[2] = position hash of the ordering, used to resolve the cursor
// KEYS[3] = events hash
// KEYS[4] = global position hash
// ARGV[1] = cursor event id, empty for head
// ARGV[2] = "f" (forward) or "b" (backward)
// ARGV[3] = maximum number of events
// Returns a flat array of record, global position pairs in read order, or
// an error reply "CURSOR_NOT_FOUND".
var readScript = redis.NewScript(`
local n = redis.call("LLEN", KEYS[1])
local backward = ARGV[2] == "b"
local idx
if ARGV[1] == "" then
    if backward then idx = n - 1 else idx = 0 end
else
    local p = redis.call("HGET", KEYS[2], ARGV[1])
    if not p then
        return redis.error_reply("CURSOR_NOT_FOUND")
    end
    p = tonumber(p) - 1
    if backward then idx = p - 1 else idx = p + 1 end
end

local count = tonumber(ARGV[3])
local ids
if backward then
    if idx < 0 then return {} end
    ids = redis.call("LRANGE", KEYS[1], math.max(0, idx - count + 1), idx)
else
    if idx >= n then return {} end
    ids = redis.call("LRANGE", KEYS[1], idx, math.min(n - 1, idx + count - 1))
end

local out = {}
local first, last, step = 1, #ids, 1
if backward then first, last, step = #ids, 1, -1 end
for i = first, last, step do
    out[#out + 1] = redis.call("HGET", KEYS[3], ids[i])
    out[#out + 1] = redis.call("HGET", KEYS[4], ids[i])
end
return out
`)
