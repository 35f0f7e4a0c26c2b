// Command monitor relays integrity signals from stdin to the vigil backend.
//
// It reads one JSON object per line, fills in the session id and a
// timestamp when missing, and POSTs each as an event submission:
//
//	echo '{"event_type":"TAB_SWITCH"}' | monitor -session sess_abc123
//
// Intended as glue between a local capture process (camera pipeline,
// browser extension) and the backend's admission endpoint.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vigilhq/vigil/internal/logging"
	"github.com/vigilhq/vigil/internal/retry"
)

func main() {
	var (
		apiURL    = flag.String("api", envOrDefault("VIGIL_API_URL", "http://localhost:8080"), "vigil backend base URL")
		sessionID = flag.String("session", "", "session id to attach events to (required)")
		logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logging.New(*logLevel, "text")

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: monitor -session <session_id> [-api <url>]")
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sent, failed int
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal(line, &payload); err != nil {
			logger.Warn("skipping malformed line", "error", err)
			failed++
			continue
		}

		payload["session_id"] = *sessionID
		if _, ok := payload["timestamp"]; !ok {
			payload["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
		}

		if err := postEvent(ctx, client, *apiURL, payload); err != nil {
			logger.Error("failed to submit event", "error", err, "event_type", payload["event_type"])
			failed++
			continue
		}
		sent++
	}

	if err := scanner.Err(); err != nil {
		logger.Error("stdin read error", "error", err)
		os.Exit(1)
	}

	logger.Info("monitor finished", "sent", sent, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func postEvent(ctx context.Context, client *http.Client, apiURL string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/v1/events", bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			err := fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(respBody))
			// Rejections (validation, lifecycle) won't succeed on retry
			if resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	})
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
