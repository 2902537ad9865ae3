package handlers

var version = "dev"

// SetVersion records the build identifier reported by /healthz.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Version returns the recorded build identifier.
func Version() string {
	return version
}
