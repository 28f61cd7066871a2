// Command linker links Wikidata items to third-party catalog records:
// it imports catalog dumps, trains classifiers, classifies candidate
// pairs, validates existing identifiers and ingests the results back
// into Wikidata.
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
