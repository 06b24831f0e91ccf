// Command paxdump prints the metadata and rows of micro-partition files as
// JSON lines.
//
//	paxdump meta part-0.pax part-1.pax
//	paxdump rows --columns 0,2 --limit 10 part-0.pax
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "paxdump:", err)
		os.Exit(1)
	}
}
