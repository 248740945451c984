package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var features = []string{
	"tcp-connect", "tcp-syn", "udp",
	"host-discovery", "os-fingerprint", "adaptive-throttling",
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print name, version, and enabled feature list",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("scanforge %s\n", version)
			fmt.Println("features:")
			for _, f := range features {
				fmt.Printf("  - %s\n", f)
			}
			return nil
		},
	}
}
