package auth

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/logging/logadmin"
	"google.golang.org/api/option"
)

// Client wraps the Cloud Logging admin client used to read entries
type Client struct {
	admin     *logadmin.Client
	projectID string
}

// NewClient creates an authenticated logadmin client.
// Without a credentials path the application default credentials are used.
func NewClient(ctx context.Context, projectID, credentialsPath string) (*Client, error) {
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			return nil, ErrNoProjectID
		}
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file not found: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	admin, err := logadmin.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &Client{
		admin:     admin,
		projectID: projectID,
	}, nil
}

// Close closes the admin client
func (c *Client) Close() error {
	if c.admin != nil {
		return c.admin.Close()
	}
	return nil
}

// ProjectID returns the project the client reads from
func (c *Client) ProjectID() string {
	return c.projectID
}

// Admin returns the underlying logadmin client
func (c *Client) Admin() *logadmin.Client {
	return c.admin
}

// Error codes and messages
var (
	ErrNoProjectID      = fmt.Errorf("no project ID provided and GOOGLE_CLOUD_PROJECT not set")
	ErrConnectionFailed = fmt.Errorf("failed to connect to Cloud Logging")
)
