package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCmd(envFile *string) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "generate <idea...>",
		Short: "Generate prompts for one idea and print them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			gen, err := a.service.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := []byte(gen.Payload)
			if !compact {
				var buf bytes.Buffer
				if err := json.Indent(&buf, gen.Payload, "", "  "); err != nil {
					return fmt.Errorf("format output: %w", err)
				}
				out = buf.Bytes()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "print the JSON on one line")
	return cmd
}
