package main

import (
	"github.com/spf13/cobra"

	"scanforge/internal/model"
)

func newScanCmd() *cobra.Command {
	var targetStr string
	o := &scanOpts{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the full discover → scan → fingerprint pipeline against one target",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := model.ParseTarget(targetStr)
			if err != nil {
				return err
			}
			return runScan([]model.Target{target}, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&targetStr, "target", "t", "", "target IP address")
	addScanFlags(flags, o)
	cmd.MarkFlagRequired("target")

	return cmd
}
