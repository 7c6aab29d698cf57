package main

// Exit codes shared by all fts commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error, or a required artifact (index, model) is missing
	ExitDataError   = 3 // Data error (malformed input, empty corpus)
	ExitBlocked     = 4 // The article source blocked automated access; cool down and re-run
)
