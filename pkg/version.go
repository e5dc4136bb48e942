package suiji

// Version is the current release of the Suiji storage engine and CLI.
const Version = "0.5.0"
