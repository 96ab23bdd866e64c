package common

import "strings"

// JoinURLPath joins path segments onto a base URL without doubling or
// dropping slashes.
func JoinURLPath(baseURL string, paths ...string) string {
	parts := make([]string, 0, len(paths)+1)
	parts = append(parts, strings.TrimSuffix(baseURL, "/"))
	for _, p := range paths {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}
