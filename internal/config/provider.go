package config

import (
	"net/url"
	"os"
	"strings"
)

// Provider supplies the queue connection string at call time.
type Provider interface {
	ConnectionString() string
}

// EnvProvider reads the environment on every call.
type EnvProvider struct {
	// Keys overrides ConnectionStringKeys when set.
	Keys []string
}

func (p EnvProvider) ConnectionString() string {
	keys := p.Keys
	if len(keys) == 0 {
		keys = ConnectionStringKeys
	}

	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}

	return ""
}

// StaticProvider always returns the same value.
type StaticProvider string

func (p StaticProvider) ConnectionString() string {
	return string(p)
}

const redacted = "***REDACTED***"

// RedactConnectionString masks secrets in Service Bus style key=value strings
// and in URLs. Anything it cannot interpret is masked entirely.
func RedactConnectionString(conn string) string {
	if conn == "" {
		return ""
	}

	if strings.Contains(conn, "://") && !strings.Contains(conn, ";") {
		return redactURL(conn)
	}

	if strings.Contains(conn, "=") {
		parts := strings.Split(conn, ";")
		for i, part := range parts {
			key, _, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "sharedaccesskey", "sharedaccesssignature", "password":
				parts[i] = key + "=" + redacted
			case "endpoint":
				parts[i] = key + "=" + redactURL(strings.TrimPrefix(part, key+"="))
			}
		}
		return strings.Join(parts, ";")
	}

	// comma separated broker lists carry no secrets
	if !strings.ContainsAny(conn, "@ ") {
		return conn
	}

	return "***REDACTED_CONNECTION***"
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "***REDACTED_URL***"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), redacted)
		}
	}
	return parsed.String()
}
