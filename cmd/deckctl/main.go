// Command deckctl works with card game files offline: it resolves drafts,
// prints deck lists, mattes images and exports printable PDFs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
