package logger

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams never reach the logs in clear. The OAuth callback carries
// the session token in its query string.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"code":          true,
	"password":      true,
	"newpassword":   true,
	"session_id":    true,
}

// RedactQuery masks the values of sensitive query parameters. A query that
// does not parse is dropped entirely.
func RedactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redacted
	}
	changed := false
	for key, vs := range values {
		if !sensitiveParams[strings.ToLower(key)] {
			continue
		}
		for i := range vs {
			vs[i] = redacted
		}
		changed = true
	}
	if !changed {
		return rawQuery
	}
	return values.Encode()
}
