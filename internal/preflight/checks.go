package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
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

// CheckEngine verifies the LaTeX engine binary exists and answers --version.
func CheckEngine(ctx context.Context, engine string) Result {
	const name = "LaTeX engine"

	engine = strings.TrimSpace(engine)
	if engine == "" {
		return Result{Name: name, Detail: "no engine configured"}
	}
	if _, err := exec.LookPath(engine); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", engine)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, engine, "--version").Run(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s --version failed (%v)", engine, err)}
	}
	return Result{Name: name, Passed: true, Detail: engine + " ok"}
}

// CheckArxiv verifies the arXiv API endpoint is reachable.
func CheckArxiv(ctx context.Context, baseURL string) Result {
	const name = "arXiv API"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"?search_query=all:test&max_results=1", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}
