// Command adscctl is a thin operator CLI for adscd's debug/control HTTP
// surface: parse flags, build a context with a timeout, dispatch to one
// handler, print.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"flag"
)

var (
	addr      = flag.String("addr", "http://127.0.0.1:9180", "adscd debug/control server address")
	authKey   = flag.String("auth-key", "", "Bearer key for the debug/control server")
	timeout   = flag.Duration("timeout", 10*time.Second, "Operation timeout")
	debugDump = flag.Bool("debug", false, "Print the engine's debug dump")
	evaluate  = flag.Bool("evaluate", false, "Trigger a manual re-evaluation")
	version   = flag.Bool("version", false, "Show version information")
)

const (
	appName    = "adscctl"
	appVersion = "1.0.0"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch {
	case *debugDump:
		if err := printDebugDump(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *evaluate:
		if err := triggerEvaluate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("evaluation triggered")
	default:
		flag.Usage()
		os.Exit(1)
	}
}

func printDebugDump(ctx context.Context) error {
	body, err := request(ctx, http.MethodGet, "/debug")
	if err != nil {
		return err
	}
	fmt.Print(string(body))
	return nil
}

func triggerEvaluate(ctx context.Context) error {
	_, err := request(ctx, http.MethodPost, "/evaluate")
	return err
}

func request(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, *addr+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if *authKey != "" {
		req.Header.Set("Authorization", "Bearer "+*authKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned %s: %s", path, resp.Status, string(body))
	}
	return body, nil
}
