package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signalstate/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe an error code, or list every code when none is given.

Examples:
  signalstate explain
  signalstate explain E106`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				codes := errors.GetAllCodes()
				sort.Strings(codes)
				for _, code := range codes {
					t, _ := errors.GetTemplate(code)
					info(out, "%s  %-8s %s", code, t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run 'signalstate explain' to list every code")
			}

			success(out, "%s: %s", code, t.Message)
			info(out, "category: %s", t.Category)
			info(out, "%s", t.Detail)
			return nil
		},
	}
}
