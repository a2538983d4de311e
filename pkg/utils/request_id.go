package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// GenerateRequestID creates a short, human-readable id for one dispatch.
// Format: {kebab-case request name without Command/Query suffix}-{8charHexUUID}
//
// Example:
//   - Input: requestName="CreateUserCommand"
//   - Output: "create-user-a3f8e2b1"
func GenerateRequestID(requestName string) string {
	prefix := kebab(trimKind(requestName))
	if prefix == "" {
		prefix = "request"
	}
	return prefix + "-" + generateShortUUID()
}

// trimKind removes a trailing Command or Query from the name.
//   - "CreateUserCommand" -> "CreateUser"
//   - "GetUserQuery" -> "GetUser"
//   - "Query" -> "Query" (nothing would be left)
func trimKind(name string) string {
	for _, suffix := range []string{"Command", "Query"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return name
}

// kebab converts CamelCase to kebab-case: "CreateUser" -> "create-user"
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
