package main

import (
	"errors"
	"fmt"

	"github.com/roost-io/roost/pkg/types"
	"github.com/spf13/cobra"
)

var podCmd = &cobra.Command{
	Use:   "pod",
	Short: "Manage pods",
}

var podLaunchCmd = &cobra.Command{
	Use:   "launch ID",
	Short: "Launch a pod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cpu, _ := cmd.Flags().GetInt("cpu")

		c := clientFromFlags(cmd)
		defer c.Close()

		result, err := c.LaunchPod(args[0], cpu)
		if err != nil {
			// Admitted but unplaceable right now: the pod is pending
			// and the rescheduler will keep retrying it.
			if errors.Is(err, types.ErrNoFeasibleNode) {
				fmt.Printf("Pod %s is pending: %v\n", args[0], err)
				return nil
			}
			return fmt.Errorf("failed to launch pod: %w", err)
		}

		fmt.Printf("✓ Pod launched: %s on %s\n", result.PodID, result.NodeID)
		return nil
	},
}

var podListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List pods",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := clientFromFlags(cmd)
		defer c.Close()

		pods, err := c.ListPods()
		if err != nil {
			return fmt.Errorf("failed to list pods: %w", err)
		}
		if len(pods) == 0 {
			fmt.Println("No pods.")
			return nil
		}

		fmt.Printf("%-20s %-10s %5s  %s\n", "ID", "STATUS", "CPU", "NODE")
		for _, pod := range pods {
			node := pod.NodeID
			if node == "" {
				node = "-"
			}
			fmt.Printf("%-20s %-10s %5d  %s\n", pod.ID, pod.Status, pod.CPURequest, node)
		}
		return nil
	},
}

func init() {
	podCmd.AddCommand(podLaunchCmd)
	podCmd.AddCommand(podListCmd)

	podLaunchCmd.Flags().Int("cpu", 0, "CPU request (0 uses the server default)")

	rootCmd.AddCommand(podCmd)
}
