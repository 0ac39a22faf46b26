package store

const (
	upsertCacheRow = `
		INSERT INTO cache_kv (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteCacheRow = `
		DELETE FROM cache_kv
		WHERE key = ?;`

	scanCacheRange = `
		SELECT key, value
		FROM cache_kv
		WHERE key >= ? AND key < ?
		ORDER BY key;`

	containsCacheKey = `
		SELECT EXISTS (
			SELECT 1
			FROM cache_kv
			WHERE key = ?
		);`
)
