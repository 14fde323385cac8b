package pipeline

import "strings"

// IsValidRecipient is a syntactic gate for outbound actions: the address
// must contain '@' and the part after the first '@' must contain '.'.
func IsValidRecipient(addr string) bool {
	_, domain, ok := strings.Cut(addr, "@")
	return ok && strings.Contains(domain, ".")
}
