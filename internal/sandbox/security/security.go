// Package security defines sandbox isolation profiles.
package security

// IsolationProfile describes namespace and seccomp settings for a run.
type IsolationProfile struct {
	RootFS         string
	SeccompProfile string
	DisableNetwork bool
}
