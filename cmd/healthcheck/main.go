// Command healthcheck probes a running loginpanel from inside its container.
// It exits 0 when /api/v1/health answers 200 with status "ok" and 1
// otherwise, printing the reason to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr = "127.0.0.1:5000"
	healthPath  = "/api/v1/health"
	timeout     = 2 * time.Second
)

// healthBody is the subset of the health response the probe inspects.
type healthBody struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error"`
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	baseURL := "http://" + probeAddr(os.Getenv("LOGINPANEL_LISTEN_ADDR"))
	if err := probe(ctx, &http.Client{Timeout: timeout}, baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

func probe(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", healthPath, err)
	}
	defer resp.Body.Close()

	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("backend %q is %q (HTTP %d): %s", body.Backend, body.Status, resp.StatusCode, body.Error)
	}
	return nil
}

// probeAddr maps the server's listen address to one dialable from inside the
// same container: a bind-all or empty host becomes loopback.
func probeAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return defaultAddr
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
