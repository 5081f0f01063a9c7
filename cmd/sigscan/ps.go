package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhuweiyou/addressscanner"
)

var psCmd = &cobra.Command{
	Use:   "ps <name>",
	Short: "List the IDs of processes with the given executable name",
	Args:  cobra.ExactArgs(1),
	RunE:  runPs,
}

func runPs(cmd *cobra.Command, args []string) error {
	pids, err := addressscanner.FindProcessesByNameContext(cmdContext(cmd), args[0])
	if err != nil {
		return err
	}

	for _, pid := range pids {
		fmt.Fprintln(cmd.OutOrStdout(), pid)
	}
	return nil
}
