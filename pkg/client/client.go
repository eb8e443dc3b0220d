package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roost-io/roost/pkg/events"
	"github.com/roost-io/roost/pkg/types"
)

// requestTimeout bounds every non-streaming request.
const requestTimeout = 10 * time.Second

// Client is a Go client for the roost HTTP API, used by the CLI and
// by anything else that wants typed access to the control plane.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the manager at addr. Plain host:port
// values are promoted to http URLs.
func NewClient(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// APIError is the decoded error envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: http %d", e.Status)
}

// Unwrap maps stable error codes back to taxonomy sentinels so callers
// can use errors.Is across the wire.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "missing_field":
		return types.ErrMissingField
	case "no_feasible_node":
		return types.ErrNoFeasibleNode
	case "node_not_found":
		return types.ErrNodeNotFound
	case "pod_not_found":
		return types.ErrPodNotFound
	case "duplicate_node":
		return types.ErrDuplicateNode
	case "duplicate_pod":
		return types.ErrDuplicatePod
	case "insufficient_capacity":
		return types.ErrInsufficientCapacity
	default:
		return nil
	}
}

// LaunchResult reports where a launched pod landed.
type LaunchResult struct {
	PodID  string          `json:"pod_id"`
	Status types.PodStatus `json:"status"`
	NodeID string          `json:"node_id,omitempty"`
}

// AddNode registers a node. cpu 0 lets the server apply its default.
func (c *Client) AddNode(id string, cpu int) (*types.Node, error) {
	var node types.Node
	err := c.do(http.MethodPost, "/v1/nodes", map[string]interface{}{"id": id, "cpu": cpu}, &node)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// ListNodes returns all nodes in ascending id order.
func (c *Client) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	if err := c.do(http.MethodGet, "/v1/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNode returns one node.
func (c *Client) GetNode(id string) (*types.Node, error) {
	var node types.Node
	if err := c.do(http.MethodGet, "/v1/nodes/"+id, nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// RemoveNode deletes a node, evicting its pods.
func (c *Client) RemoveNode(id string) error {
	return c.do(http.MethodDelete, "/v1/nodes/"+id, nil, nil)
}

// Heartbeat refreshes a node's heartbeat, resurrecting it if it was
// unhealthy.
func (c *Client) Heartbeat(id string) error {
	return c.do(http.MethodPost, "/v1/nodes/"+id+"/heartbeat", nil, nil)
}

// FailNode marks a node unhealthy and evicts its pods.
func (c *Client) FailNode(id string) error {
	return c.do(http.MethodPost, "/v1/nodes/"+id+"/fail", nil, nil)
}

// RecoverNode marks a node healthy again.
func (c *Client) RecoverNode(id string) error {
	return c.do(http.MethodPost, "/v1/nodes/"+id+"/recover", nil, nil)
}

// Scale creates count nodes with generated ids.
func (c *Client) Scale(count int) ([]*types.Node, error) {
	var resp struct {
		Nodes []*types.Node `json:"nodes"`
	}
	err := c.do(http.MethodPost, "/v1/nodes/scale", map[string]interface{}{"count": count}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// LaunchPod launches a pod. cpu 0 lets the server apply its default.
// A no_feasible_node error means the pod was admitted and left
// pending; errors.Is(err, types.ErrNoFeasibleNode) identifies it.
func (c *Client) LaunchPod(id string, cpu int) (*LaunchResult, error) {
	var result LaunchResult
	err := c.do(http.MethodPost, "/v1/pods", map[string]interface{}{"id": id, "cpu": cpu}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPods returns all pods in ascending id order.
func (c *Client) ListPods() ([]*types.Pod, error) {
	var pods []*types.Pod
	if err := c.do(http.MethodGet, "/v1/pods", nil, &pods); err != nil {
		return nil, err
	}
	return pods, nil
}

// GetPod returns one pod.
func (c *Client) GetPod(id string) (*types.Pod, error) {
	var pod types.Pod
	if err := c.do(http.MethodGet, "/v1/pods/"+id, nil, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// Leader returns the current leader id, or "none".
func (c *Client) Leader() (string, error) {
	var resp struct {
		Leader string `json:"leader"`
	}
	if err := c.do(http.MethodGet, "/v1/leader", nil, &resp); err != nil {
		return "", err
	}
	return resp.Leader, nil
}

// GetStrategy returns the cluster placement strategy.
func (c *Client) GetStrategy() (types.Strategy, error) {
	var resp struct {
		Strategy types.Strategy `json:"strategy"`
	}
	if err := c.do(http.MethodGet, "/v1/strategy", nil, &resp); err != nil {
		return "", err
	}
	return resp.Strategy, nil
}

// SetStrategy sets the cluster placement strategy and returns the
// normalized value the server settled on.
func (c *Client) SetStrategy(strategy string) (types.Strategy, error) {
	var resp struct {
		Strategy types.Strategy `json:"strategy"`
	}
	err := c.do(http.MethodPut, "/v1/strategy", map[string]interface{}{"strategy": strategy}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Strategy, nil
}

// Metrics returns the capacity snapshot.
func (c *Client) Metrics() (*types.MetricsSnapshot, error) {
	var snapshot types.MetricsSnapshot
	if err := c.do(http.MethodGet, "/v1/metrics", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// StreamEvents subscribes to the cluster event stream. The returned
// channel closes when ctx is cancelled or the connection drops.
func (c *Client) StreamEvents(ctx context.Context) (<-chan *events.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/events", nil)
	if err != nil {
		return nil, err
	}

	// The stream outlives any sane request timeout, so it gets its
	// own un-bounded client.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	ch := make(chan *events.Event)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			var event events.Event
			if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
				continue
			}
			select {
			case ch <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// do runs one JSON request against the API and decodes the response
// into out when out is non-nil.
func (c *Client) do(method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
}
