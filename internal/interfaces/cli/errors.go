package cli

import "errors"

// errNoCLIContext fires only if a subcommand's RunE runs without cobra
// having called persistentPreRun first, which PersistentPreRunE prevents
// in every normal invocation.
var errNoCLIContext = errors.New("cli: command context not initialized")
