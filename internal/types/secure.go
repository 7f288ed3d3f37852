package types

import "log/slog"

const secretMask = "***REDACTED***"

// SecretString holds a credential the service must never echo back: the
// database URL, the MET token, the Google API key, the admin key. fmt
// verbs, JSON marshalling, and slog all see the mask; only Unmask returns
// the plaintext.
type SecretString string

func (s SecretString) String() string {
	return secretMask
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + secretMask + `"`), nil
}

// LogValue keeps the mask in place when a SecretString is passed to slog
// directly rather than through a %s verb.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(secretMask)
}

// Unmask returns the plaintext. Call sites are the ones that hand the
// credential to a driver or set an outbound header, nothing else.
func (s SecretString) Unmask() string {
	return string(s)
}
