package ident

import "strings"

// redactKeep is how many leading characters of an id survive redaction
const redactKeep = 8

// Redact shortens an id for logs and error messages. The prefix is enough
// to correlate log lines but cannot be used to open the clip.
func Redact(id string) string {
	if len(id) <= redactKeep {
		return id
	}
	return id[:redactKeep] + "..."
}

// RedactPath applies Redact to the id in a request path. Reserved paths
// are returned unchanged.
func RedactPath(path string) string {
	id := strings.TrimLeft(path, "/")
	switch id {
	case "", "health", "metrics":
		return path
	}
	return "/" + Redact(id)
}
