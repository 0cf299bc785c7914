package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
)

const programName = "portal"

var globalFlags = struct {
	nodeID int64
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "HMC volunteer portal backend",
	}
	rootCmd.PersistentFlags().Int64Var(&globalFlags.nodeID, "node-id", 1, "snowflake node id, unique per running instance")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(globalFlags.nodeID)
}
