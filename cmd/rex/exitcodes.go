package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, missing API key)
	ExitDataError   = 3 // Data error (malformed session or import file)
	ExitActionError = 4 // The action ran and failed; the session was saved with the error
	ExitExhausted   = 5 // The operation budget is used up
)
