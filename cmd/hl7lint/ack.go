package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthbridge/hl7v2/ack"
	"github.com/healthbridge/hl7v2/hl7"
	"github.com/healthbridge/hl7v2/parse"
)

func ackCmd() *cobra.Command {
	var reject string
	var reason string

	cmd := &cobra.Command{
		Use:   "ack [file]",
		Short: "Print the ACK a message would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			result, err := parse.New().Parse(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			builder := ack.NewBuilder()

			var response hl7.Message
			switch {
			case reject != "":
				response, err = builder.Reject(result.Tree, reject)
			case reason != "":
				response, err = builder.Error(result.Tree, fmt.Errorf("%s", reason))
			default:
				response, err = builder.Accept(result.Tree)
			}
			if err != nil {
				return fmt.Errorf("build ack: %w", err)
			}

			fmt.Println(response.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&reject, "reject", "", "build a reject (AR) ACK with this reason instead of an accept ACK")
	cmd.Flags().StringVar(&reason, "error", "", "build an error (AE) ACK with this reason instead of an accept ACK")

	return cmd
}
