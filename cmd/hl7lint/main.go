// Command hl7lint is a small CLI around the hl7v2 packages: it can
// validate a message file against a conformance profile, run an MLLP
// listener that acknowledges inbound traffic, or print the ACK that
// would be generated for a given message.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hl7lint",
		Short: "Inspect, validate, and serve HL7 v2.x messages",
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ackCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
