package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var scaleCmd = &cobra.Command{
	Use:   "scale COUNT",
	Short: "Add COUNT nodes with generated ids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("count must be a number: %v", args[0])
		}

		c := clientFromFlags(cmd)
		defer c.Close()

		nodes, err := c.Scale(count)
		if err != nil {
			return fmt.Errorf("failed to scale: %w", err)
		}

		fmt.Printf("✓ Cluster scaled up by %d nodes:\n", len(nodes))
		for _, node := range nodes {
			fmt.Printf("  %s (%d cpu)\n", node.ID, node.TotalCPU)
		}
		return nil
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Manage the placement strategy",
}

var strategyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current placement strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		strategy, err := c.GetStrategy()
		if err != nil {
			return fmt.Errorf("failed to get strategy: %w", err)
		}

		fmt.Println(strategy)
		return nil
	},
}

var strategySetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Set the placement strategy (first_fit, best_fit, worst_fit)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		strategy, err := c.SetStrategy(args[0])
		if err != nil {
			return fmt.Errorf("failed to set strategy: %w", err)
		}

		fmt.Printf("✓ Strategy set: %s\n", strategy)
		return nil
	},
}

var leaderCmd = &cobra.Command{
	Use:   "leader",
	Short: "Show the current cluster leader",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		leader, err := c.Leader()
		if err != nil {
			return fmt.Errorf("failed to get leader: %w", err)
		}

		fmt.Println(leader)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the cluster capacity snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		snapshot, err := c.Metrics()
		if err != nil {
			return fmt.Errorf("failed to get metrics: %w", err)
		}

		fmt.Printf("Healthy Nodes: %d\n", snapshot.HealthyNodes)
		fmt.Printf("Available CPU: %d\n", snapshot.AvailableCPU)
		fmt.Printf("Running Pods:  %d\n", snapshot.RunningPods)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream cluster events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		ch, err := c.StreamEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		for event := range ch {
			fmt.Printf("%s  %-18s %s\n",
				event.Timestamp.Format(time.RFC3339), event.Type, event.Message)
		}
		return nil
	},
}

func init() {
	strategyCmd.AddCommand(strategyGetCmd)
	strategyCmd.AddCommand(strategySetCmd)

	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(strategyCmd)
	rootCmd.AddCommand(leaderCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(eventsCmd)
}
