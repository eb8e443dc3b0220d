package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage nodes",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add ID",
	Short: "Register a node with the cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cpu, _ := cmd.Flags().GetInt("cpu")

		c := clientFromFlags(cmd)
		defer c.Close()

		node, err := c.AddNode(args[0], cpu)
		if err != nil {
			return fmt.Errorf("failed to add node: %w", err)
		}

		fmt.Printf("✓ Node added: %s (%d cpu)\n", node.ID, node.TotalCPU)
		return nil
	},
}

var nodeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List nodes in the cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		nodes, err := c.ListNodes()
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		if len(nodes) == 0 {
			fmt.Println("No nodes in the cluster.")
			return nil
		}

		fmt.Printf("%-20s %-10s %5s %10s  %s\n", "ID", "STATUS", "CPU", "AVAILABLE", "LAST HEARTBEAT")
		for _, node := range nodes {
			fmt.Printf("%-20s %-10s %5d %10d  %s\n",
				node.ID, node.Status, node.TotalCPU, node.AvailableCPU,
				node.LastHeartbeat.Format(time.RFC3339))
		}
		return nil
	},
}

var nodeRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a node from the cluster",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		if err := c.RemoveNode(args[0]); err != nil {
			return fmt.Errorf("failed to remove node: %w", err)
		}

		fmt.Printf("✓ Node removed: %s\n", args[0])
		return nil
	},
}

var nodeHeartbeatCmd = &cobra.Command{
	Use:   "heartbeat ID",
	Short: "Send a heartbeat for a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		if err := c.Heartbeat(args[0]); err != nil {
			return fmt.Errorf("failed to heartbeat node: %w", err)
		}

		fmt.Printf("✓ Heartbeat recorded: %s\n", args[0])
		return nil
	},
}

var nodeFailCmd = &cobra.Command{
	Use:   "fail ID",
	Short: "Mark a node unhealthy and evict its pods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		if err := c.FailNode(args[0]); err != nil {
			return fmt.Errorf("failed to fail node: %w", err)
		}

		fmt.Printf("✓ Node failed: %s (pods evicted)\n", args[0])
		return nil
	},
}

var nodeRecoverCmd = &cobra.Command{
	Use:   "recover ID",
	Short: "Mark a node healthy again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		if err := c.RecoverNode(args[0]); err != nil {
			return fmt.Errorf("failed to recover node: %w", err)
		}

		fmt.Printf("✓ Node recovered: %s\n", args[0])
		return nil
	},
}

func init() {
	nodeCmd.AddCommand(nodeAddCmd)
	nodeCmd.AddCommand(nodeListCmd)
	nodeCmd.AddCommand(nodeRemoveCmd)
	nodeCmd.AddCommand(nodeHeartbeatCmd)
	nodeCmd.AddCommand(nodeFailCmd)
	nodeCmd.AddCommand(nodeRecoverCmd)

	nodeAddCmd.Flags().Int("cpu", 0, "CPU capacity (0 uses the server default)")

	rootCmd.AddCommand(nodeCmd)
}
