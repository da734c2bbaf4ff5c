package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommands maps GOOS to the command that opens a URL in the default browser.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

var goos = runtime.GOOS

// OpenBrowser starts the default system browser on url without waiting for it to exit.
func OpenBrowser(url string) error {
	argv, ok := browserCommands[goos]
	if !ok {
		return fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, goos)
	}

	cmd := exec.Command(argv[0], append(argv[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
