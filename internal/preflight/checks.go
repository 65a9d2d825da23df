package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"aura/internal/llmconfig"
	"aura/internal/workitems"
)

const gatewayCheckTimeout = 5 * time.Second

// CheckGateway verifies that the LLM gateway answers HTTP. The gateway only
// accepts POST, so any response below 500 (405 included) counts as reachable.
func CheckGateway(ctx context.Context, url string) Result {
	const name = "LLM gateway"

	url = strings.TrimSpace(url)
	if url == "" {
		return Result{Name: name, Detail: "missing url (real analyses will use mock results)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, gatewayCheckTimeout)
	defer cancel()

	client := &http.Client{Timeout: gatewayCheckTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", url, err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", url, summarizeGatewayError(err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: responded %d)", url, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", url)}
}

// CheckDatabase opens the work-item database and reports its schema version.
func CheckDatabase(ctx context.Context, path string) Result {
	const name = "Database"

	store, err := workitems.Open(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema %s)", path, version)}
}

// CheckProviderKeys reports which catalog providers have a key available.
// At least one key is needed for real analyses.
func CheckProviderKeys(catalog *llmconfig.Catalog, source llmconfig.Source) Result {
	const name = "Provider API keys"

	var found []string
	var missing []string
	for _, provider := range catalog.Providers() {
		if source.APIKey(provider.ID) != "" {
			found = append(found, provider.ID)
		} else {
			missing = append(missing, strings.Join(llmconfig.EnvKeys(provider.ID), " or "))
		}
	}
	if len(found) == 0 {
		return Result{Name: name, Detail: "none found (set " + strings.Join(missing, ", ") + ")"}
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(found, ", ")}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeGatewayError produces a human-readable summary for gateway check failures.
func summarizeGatewayError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "error: timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "error: timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "error: unreachable"
	}
	return "error: " + err.Error()
}
