package redis

const (
	// upsertSessionScript atomically writes a session and its per-user indexes
	upsertSessionScript = `
local session_key = KEYS[1]     -- devtime:session:{sessionID}
local started_key = KEYS[2]     -- devtime:sessions:user:{userID}:started
local heartbeat_key = KEYS[3]   -- devtime:sessions:user:{userID}:heartbeat

local session_id = ARGV[1]
local user_id = ARGV[2]
local language = ARGV[3]
local editor = ARGV[4]
local started_at = ARGV[5]
local last_heartbeat_at = ARGV[6]
local started_score = ARGV[7]
local heartbeat_score = ARGV[8]
local index_prefix = ARGV[9]    -- devtime:sessions:user:

-- A session moved to another user leaves the previous owner's indexes
local previous_owner = redis.call('HGET', session_key, 'user_id')
if previous_owner and previous_owner ~= user_id then
  redis.call('ZREM', index_prefix .. previous_owner .. ':started', session_id)
  redis.call('ZREM', index_prefix .. previous_owner .. ':heartbeat', session_id)
end

redis.call('HSET', session_key,
  'id', session_id,
  'user_id', user_id,
  'language', language,
  'editor', editor,
  'started_at', started_at,
  'last_heartbeat_at', last_heartbeat_at
)

-- Scores are unix milliseconds
redis.call('ZADD', started_key, started_score, session_id)
redis.call('ZADD', heartbeat_key, heartbeat_score, session_id)

return 'OK'
`

	// upsertUserScript atomically writes a user, keeping the original created_at
	upsertUserScript = `
local user_key = KEYS[1]        -- devtime:user:{userID}
local users_set = KEYS[2]       -- devtime:users

local user_id = ARGV[1]
local timezone = ARGV[2]
local created_at = ARGV[3]

local existing_created = redis.call('HGET', user_key, 'created_at')
if existing_created then
  created_at = existing_created
end

redis.call('HSET', user_key,
  'id', user_id,
  'timezone', timezone,
  'created_at', created_at
)
redis.call('SADD', users_set, user_id)

return 'OK'
`

	// findSessionsScript returns the IDs of sessions with a heartbeat at or
	// after ARGV[1] and a start at or before ARGV[2] (unix milliseconds).
	// It walks whichever index range is smaller and looks each id up in the other one.
	findSessionsScript = `
local started_key = KEYS[1]     -- devtime:sessions:user:{userID}:started
local heartbeat_key = KEYS[2]   -- devtime:sessions:user:{userID}:heartbeat

local window_start = ARGV[1]
local window_end = ARGV[2]

local ending_after = redis.call('ZCOUNT', heartbeat_key, window_start, '+inf')
local starting_before = redis.call('ZCOUNT', started_key, '-inf', window_end)

local ids = {}
if ending_after <= starting_before then
  local candidates = redis.call('ZRANGEBYSCORE', heartbeat_key, window_start, '+inf')
  for _, id in ipairs(candidates) do
    local score = redis.call('ZSCORE', started_key, id)
    if score and tonumber(score) <= tonumber(window_end) then
      table.insert(ids, id)
    end
  end
else
  local candidates = redis.call('ZRANGEBYSCORE', started_key, '-inf', window_end)
  for _, id in ipairs(candidates) do
    local score = redis.call('ZSCORE', heartbeat_key, id)
    if score and tonumber(score) >= tonumber(window_start) then
      table.insert(ids, id)
    end
  end
end

return ids
`
)
