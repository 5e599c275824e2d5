package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"webclipper-api/core/panel"
	"webclipper-api/infrastructure/page"
)

func newItemsCmd(app *App) *cobra.Command {
	var markdown, copyItems bool

	cmd := &cobra.Command{
		Use:   "items <domain>",
		Short: "List the items collected on a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.open(ctx, "")
			if err != nil {
				return err
			}
			defer s.close()

			p := panel.New(args[0], s.client, systemClipboard{}, app.logger)
			p.Update(s.client.GetItems(ctx, args[0]))
			return printItems(cmd, p, args[0], markdown, copyItems)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the items as Markdown")
	cmd.Flags().BoolVar(&copyItems, "copy", false, "Copy the items to the clipboard")
	return cmd
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every collected item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer s.close()

			s.client.ClearAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Collection cleared")
			return nil
		},
	}
}

// printItems writes the panel list, or a Markdown export of it
func printItems(cmd *cobra.Command, p *panel.Panel, title string, markdown, copyItems bool) error {
	out := cmd.OutOrStdout()
	if markdown {
		doc, err := page.Markdown(title, p.Items())
		if err != nil {
			return err
		}
		fmt.Fprint(out, doc)
	} else {
		fmt.Fprintln(out, strings.Join(p.Lines(), "\n"))
	}

	if copyItems {
		fmt.Fprintln(cmd.ErrOrStderr(), p.Copy(p.ShowAll(cmd.Context())))
	}
	return nil
}
