package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthbridge/hl7v2/inspect"
	"github.com/healthbridge/hl7v2/parse"
	"github.com/healthbridge/hl7v2/validate"
)

func validateCmd() *cobra.Command {
	var messageType string
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse a message file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			result, err := parse.New(parse.WithStrictMode(strict)).Parse(data)
			if err != nil {
				logger.Error().Err(err).Str("file", args[0]).Msg("parse failed")
				return err
			}

			for _, d := range result.Diagnostics.Warnings {
				logger.Warn().Str("location", d.Location).Str("code", d.Code).Msg(d.Message)
			}
			for _, d := range result.Diagnostics.Errors {
				logger.Error().Str("location", d.Location).Str("code", d.Code).Msg(d.Message)
			}

			summary := inspect.Summarize(result.Tree)
			logger.Info().
				Str("type", summary.MessageType).
				Str("control_id", summary.ControlID).
				Str("version", summary.Version).
				Int("segments", summary.SegmentCount).
				Msg("parsed message")

			if messageType != "" {
				profile := validate.Profile{Name: "cli", MessageType: messageType}
				engine := validate.NewEngine(validate.WithEngineStrictMode(strict))
				issues := engine.Validate(result.Tree, profile)
				for _, iss := range issues {
					logger.Error().Str("location", iss.Location).Str("code", iss.Code).Msg(iss.Message)
				}
				if len(issues) > 0 {
					return fmt.Errorf("%d conformance issue(s)", len(issues))
				}
			}

			if !result.Diagnostics.Successful() {
				return fmt.Errorf("parse completed with errors")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&messageType, "message-type", "", "expected MSH-9 value, e.g. ADT^A01, to validate against")
	cmd.Flags().BoolVar(&strict, "strict", false, "parse in strict mode and report segment cardinality violations as errors")

	return cmd
}
