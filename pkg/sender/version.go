package sender

// Version information for the sender module.
const (
	// Version is the current version of the sender module.
	Version = "0.1.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "0.1.0"
)
