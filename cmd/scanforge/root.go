package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scanforge/internal/config"
	"scanforge/internal/logging"
)

var (
	cfgDir string
	log    *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scanforge",
	Short: "scanforge is a concurrent, throttle-aware network scanner and OS fingerprinter",
	Long: `scanforge discovers live hosts, scans TCP/UDP ports, and fingerprints the
remote OS from a weighted blend of TCP/ICMP/UDP/protocol/clock-skew signals.

Examples:
  scanforge scan --target 10.0.0.1 --ports 1-1024 --scan-type tcp
  scanforge scan-file --file targets.txt --preset web --scan-type tcp --scan-type syn
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger(cmd)
	},
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "scanforge: fatal: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", ".", "directory to search for scanforge.yaml")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newScanFileCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initLogger(cmd *cobra.Command) error {
	loader := config.NewLoader(cfgDir)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	l, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	log = l
	return nil
}

func loadConfig() (*config.Config, error) {
	return config.NewLoader(cfgDir).Load()
}
