package entities

import (
	"fmt"
	"strings"
)

// RepositoryRef identifies a hosted repository. It is resolved once at startup
// from the hosting platform and never mutated afterwards.
type RepositoryRef struct {
	FullName string // "owner/name" (GitHub) or "group/subgroup/name" (GitLab)
	Name     string // short name, last path segment of FullName
	CloneURL string // URL used for git transport, chosen by the clone protocol
	SSHURL   string
	HTTPSURL string
	WebURL   string
}

// TreeURL returns the browsable URL of the given branch.
func (r RepositoryRef) TreeURL(branch string) string {
	return fmt.Sprintf("%s/tree/%s", strings.TrimSuffix(r.WebURL, "/"), branch)
}

// ShortName returns the last path segment of a full repository name.
func ShortName(fullName string) string {
	trimmed := strings.Trim(fullName, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// SplitFullName splits "owner/name" into its owner and name parts.
func SplitFullName(fullName string) (string, string, error) {
	trimmed := strings.Trim(fullName, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 || idx == len(trimmed)-1 {
		return "", "", fmt.Errorf("invalid repository name %q, expected owner/name", fullName)
	}
	return trimmed[:idx], trimmed[idx+1:], nil
}
