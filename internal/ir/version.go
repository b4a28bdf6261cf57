package ir

// Version constants stamped on journaled sessions.
const (
	// IRVersion is the journal payload format version.
	IRVersion = "1"

	// EngineVersion is the tenpair engine version.
	EngineVersion = "0.1.0"
)
