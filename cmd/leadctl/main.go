// Command leadctl scores leads offline with the same engine the API uses.
package main

import (
	"fmt"
	"os"

	"lead_portal_backend/platform/config"
)

func main() {
	cfg, err := config.LoadOffline()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
