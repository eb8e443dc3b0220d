/*
Package client provides a Go client library for the roost HTTP API.

The client wraps the API with typed methods, maps the server's stable
error codes back to the taxonomy sentinels, and handles request
timeouts. It is what the CLI uses, and what anything else should use
instead of hand-rolling HTTP calls.

# Usage

	c := client.NewClient("127.0.0.1:8080")
	defer c.Close()

	node, err := c.AddNode("node-1", 8)
	if err != nil {
		log.Fatal(err)
	}

	result, err := c.LaunchPod("web-1", 2)
	if errors.Is(err, types.ErrNoFeasibleNode) {
		// Admitted but pending; the rescheduler retries it.
	}

# Error Handling

Every non-2xx response decodes into an *APIError carrying the HTTP
status, the stable code, and the server's message. APIError unwraps to
the matching sentinel from pkg/types, so errors.Is works across the
wire exactly as it does in-process:

	_, err := c.GetNode("ghost")
	errors.Is(err, types.ErrNodeNotFound) // true

# Event Streaming

StreamEvents opens /v1/events and forwards decoded events on a channel
until the context is cancelled:

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.StreamEvents(ctx)
	for event := range ch {
		fmt.Println(event.Type, event.Message)
	}

Regular requests are bounded by a 10 second timeout; the event stream
is not, it lives until cancelled.
*/
package client
