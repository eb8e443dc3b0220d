package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roost-io/roost/pkg/client"
	"github.com/roost-io/roost/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a configuration file",
	Long: `Apply roost resources from a YAML file. A file may hold several
resources separated by --- document markers.

Examples:
  # Apply a node definition
  roost apply -f node.yaml

  # Apply a whole cluster layout
  roost apply -f cluster.yaml`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

// RoostResource represents a generic roost resource
type RoostResource struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   ResourceMetadata       `yaml:"metadata"`
	Spec       map[string]interface{} `yaml:"spec"`
}

type ResourceMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}
	defer file.Close()

	c := clientFromFlags(cmd)
	defer c.Close()

	decoder := yaml.NewDecoder(file)
	for {
		var resource RoostResource
		if err := decoder.Decode(&resource); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to parse YAML: %v", err)
		}

		switch resource.Kind {
		case "Node":
			err = applyNode(c, &resource)
		case "Pod":
			err = applyPod(c, &resource)
		case "Strategy":
			err = applyStrategy(c, &resource)
		default:
			err = fmt.Errorf("unsupported resource kind: %s", resource.Kind)
		}
		if err != nil {
			return err
		}
	}
}

func applyNode(c *client.Client, resource *RoostResource) error {
	name := resource.Metadata.Name
	cpu := getInt(resource.Spec, "cpu", 0)

	// Node exists: nothing to update, capacity is immutable.
	if existing, _ := c.GetNode(name); existing != nil {
		fmt.Printf("Node already exists: %s (skipping)\n", name)
		return nil
	}

	node, err := c.AddNode(name, cpu)
	if err != nil {
		return fmt.Errorf("failed to create node: %v", err)
	}

	fmt.Printf("✓ Node created: %s (%d cpu)\n", node.ID, node.TotalCPU)
	return nil
}

func applyPod(c *client.Client, resource *RoostResource) error {
	name := resource.Metadata.Name
	cpu := getInt(resource.Spec, "cpu", 0)

	if existing, _ := c.GetPod(name); existing != nil {
		fmt.Printf("Pod already exists: %s (skipping)\n", name)
		return nil
	}

	result, err := c.LaunchPod(name, cpu)
	if err != nil {
		if errors.Is(err, types.ErrNoFeasibleNode) {
			fmt.Printf("Pod %s is pending: %v\n", name, err)
			return nil
		}
		return fmt.Errorf("failed to launch pod: %v", err)
	}

	fmt.Printf("✓ Pod launched: %s on %s\n", result.PodID, result.NodeID)
	return nil
}

func applyStrategy(c *client.Client, resource *RoostResource) error {
	name := getString(resource.Spec, "strategy", "")
	if name == "" {
		return fmt.Errorf("strategy spec requires a strategy field")
	}

	strategy, err := c.SetStrategy(name)
	if err != nil {
		return fmt.Errorf("failed to set strategy: %v", err)
	}

	fmt.Printf("✓ Strategy set: %s\n", strategy)
	return nil
}

// Helper functions
func getString(m map[string]interface{}, key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return defaultValue
}

func getInt(m map[string]interface{}, key string, defaultValue int) int {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case float64:
			return int(val)
		}
	}
	return defaultValue
}
