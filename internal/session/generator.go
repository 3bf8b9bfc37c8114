package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	idPrefix      = "sess"
	idRandomBytes = 32
)

// NewID returns a session id of the form sess.<unix>.<base64url random>.
func NewID(now time.Time) (string, error) {
	buf := make([]byte, idRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", &Error{Code: CodeGeneration, Message: "failed to generate session ID", Cause: err}
	}
	return fmt.Sprintf("%s.%d.%s", idPrefix, now.Unix(), base64.RawURLEncoding.EncodeToString(buf)), nil
}

// ParseID checks the format of id and returns its creation time.
func ParseID(id string) (time.Time, error) {
	if id == "" {
		return time.Time{}, invalid("empty session ID")
	}

	parts := strings.Split(id, ".")
	if len(parts) != 3 || parts[0] != idPrefix {
		return time.Time{}, invalid("invalid session ID format")
	}

	secs, err := strconv.ParseUint(parts[1], 10, 63)
	if err != nil {
		return time.Time{}, invalid("invalid timestamp in session ID")
	}

	random := parts[2]
	if len(random) < base64.RawURLEncoding.EncodedLen(idRandomBytes) {
		return time.Time{}, invalid("session ID random part too short")
	}
	if _, err := base64.RawURLEncoding.DecodeString(random); err != nil {
		return time.Time{}, invalid("invalid characters in session ID")
	}

	return time.Unix(int64(secs), 0), nil
}
