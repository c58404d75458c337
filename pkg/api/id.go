package api

import (
	"regexp"
	"strings"

	"github.com/aidarkhanov/nanoid"
	"github.com/google/uuid"
)

const (
	sessionIDPrefix = "sess_"
	requestIDPrefix = "req_"

	requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	requestIDLength   = 28
)

var sessionIDPattern = regexp.MustCompile(`^sess_[0-9a-f]{32}$`)

// NewSessionID generates a stream session ID: "sess_" followed by a random
// UUID in hex without dashes.
func NewSessionID() string {
	return sessionIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateSessionID checks whether id has the shape produced by NewSessionID.
func ValidateSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// NewRequestID generates a request ID for log correlation.
func NewRequestID() string {
	id, err := nanoid.Generate(requestIDAlphabet, requestIDLength)
	if err != nil {
		return requestIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return requestIDPrefix + id
}
