package semantic

// #region imports
import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion

// #region method

// The estimator sidecar speaks loosely-typed Struct messages so the
// contract can evolve without regenerating stubs on this side.
const similarityMethod = "/finrel.v1.Estimator/Similarity"

// #endregion method

// #region client

// Client calls the Python estimator sidecar's similarity RPC. The
// connection is established lazily by gRPC; failed calls mark the client
// unavailable so chains fall through to the lexical provider.
type Client struct {
	conn *grpc.ClientConn

	mu     sync.Mutex
	failed bool
}

// NewClient creates a similarity client for the sidecar at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Available reports whether the client can still serve calls.
func (c *Client) Available() bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.failed
}

// Similarity invokes the sidecar's similarity RPC.
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"text_a": a,
		"text_b": b,
	})
	if err != nil {
		return 0, fmt.Errorf("build similarity request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, similarityMethod, req, resp); err != nil {
		c.mu.Lock()
		c.failed = true
		c.mu.Unlock()
		return 0, fmt.Errorf("similarity rpc: %w", err)
	}

	field, ok := resp.Fields["similarity"]
	if !ok {
		return 0, fmt.Errorf("similarity rpc: response missing similarity field")
	}
	return field.GetNumberValue(), nil
}

// #endregion client
