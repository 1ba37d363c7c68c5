// File: utils/constants.go
package utils

import "time"

// ProfileKeyPrefix is the record-store prefix for user profile records.
const ProfileKeyPrefix = "users/"

// ChallengeCachePrefix is the prefix used for Redis challenge cache keys.
const ChallengeCachePrefix = "challenge:"

// DefaultChallengeTTL bounds the verification window of a sent code even when
// the remote service never reports expiry.
const DefaultChallengeTTL = 5 * time.Minute

// RecordCachePrefix is the prefix used for cached record-store entries.
const RecordCachePrefix = "record:"

// RecordCacheTTL bounds how long a cached record may be served without a
// backing-store read.
const RecordCacheTTL = 10 * time.Minute
