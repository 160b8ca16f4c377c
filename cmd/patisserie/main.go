// Package main provides the patisserie command line tool for analysing
// recipe files without running the API server
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
