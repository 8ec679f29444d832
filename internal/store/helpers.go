package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// List columns hold JSON arrays. AniDB list items may contain apostrophes
// once decoded, so the wire delimiter cannot be reused here.
func joinStrings(values []string) sql.NullString {
	return encodeList(values)
}

func splitStrings(raw sql.NullString) []string {
	return decodeList[string](raw)
}

func joinInts(values []int64) sql.NullString {
	return encodeList(values)
}

func splitInts(raw sql.NullString) []int64 {
	return decodeList[int64](raw)
}

func encodeList[T any](values []T) sql.NullString {
	if len(values) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

func decodeList[T any](raw sql.NullString) []T {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []T
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil || len(values) == 0 {
		return nil
	}
	return values
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
