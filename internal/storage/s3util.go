package storage

import "strings"

// normalizeS3Prefix strips leading slashes and ensures a single trailing slash
func normalizeS3Prefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func applyS3Prefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	// Ensure there is exactly one slash between prefix and name
	if strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}
