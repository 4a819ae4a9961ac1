// devana is the command-line entry point of the optimization service: it
// runs problem files directly or starts the HTTP server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
