// ABOUTME: Entry point of the clip command line tool
// ABOUTME: Captures web pages into a Web Clipper collection from a terminal

package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
