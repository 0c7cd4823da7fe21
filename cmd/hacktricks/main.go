package main

import (
	"fmt"
	"os"

	"github.com/hacktricks-mcp/mcp-server/tools"
)

func main() {
	if err := newRootCmd(tools.ServiceOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
