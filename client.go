// snoopctl client to pull cache snapshots from a running snoopd agent.
package igmpsnoop

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// Getter is the function signature of http.Get, injected so tests can
// substitute a fake transport.
type Getter = func(url string) (resp *http.Response, err error)

// Client is an interface for pulling cache snapshots from a running
// snoopd agent's debug API.
type Client interface {
	GetSnapshot() (Snapshot, error)
	Hostname() string
	Port() string
}

type client struct {
	hostname string
	port     string
	getFunc  Getter
}

// NewClient creates a new snoopd client for the given hostname and port.
func NewClient(hostname, port string) *client {
	return &client{hostname: hostname, port: port, getFunc: http.Get}
}

func (c *client) Hostname() string {
	return c.hostname
}

func (c *client) Port() string {
	return c.port
}

// GetSnapshot fetches the current cache Snapshot from the associated agent.
func (c *client) GetSnapshot() (Snapshot, error) {
	url := fmt.Sprintf("http://%s:%s/snapshot", c.hostname, c.port)

	resp, err := c.getFunc(url)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, fmt.Errorf("status: %s (%s)", resp.Status, body)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
