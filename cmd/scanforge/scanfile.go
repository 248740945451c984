package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scanforge/internal/model"
)

func newScanFileCmd() *cobra.Command {
	var filePath string
	o := &scanOpts{}

	cmd := &cobra.Command{
		Use:   "scan-file",
		Short: "Run the pipeline against every target listed in a file, one IP per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := readTargetFile(filePath)
			if err != nil {
				return err
			}
			return runScan(targets, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&filePath, "file", "f", "", "path to a file listing one target IP per line (# comments allowed)")
	addScanFlags(flags, o)
	cmd.MarkFlagRequired("file")

	return cmd
}

func readTargetFile(path string) ([]model.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target file: %w", err)
	}
	defer f.Close()

	var targets []model.Target
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := model.ParseTarget(line)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read target file: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets found in %s", path)
	}
	return targets, nil
}
