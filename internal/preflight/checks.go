package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mediabuddy/internal/config"
	"mediabuddy/internal/corpus"
	"mediabuddy/internal/editlog"
	"mediabuddy/internal/services"
	"mediabuddy/internal/services/llm"
)

const llmCheckTimeout = 30 * time.Second

// CheckLLM verifies that the generation backend is reachable and the key is
// valid. It makes a single attempt with no retries.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig, opts ...llm.Option) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	backend, err := llm.NewBackend(checkCtx, cfg, opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := backend.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", backend.Name())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, ok string) Result {
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
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, ok)}
}

// CheckCorpus verifies that the corpus yields at least one writing sample.
func CheckCorpus(ctx context.Context, cfg *config.Config) Result {
	const name = "Writing corpus"
	store, err := corpus.OpenFromConfig(ctx, cfg)
	if err != nil {
		if errors.Is(err, services.ErrCorpusEmpty) {
			return Result{Name: name, Detail: "no usable writing samples"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d samples (version %s)", store.Len(), store.Version())}
}

// CheckEditLog verifies that the edit database opens and reports its size.
func CheckEditLog(ctx context.Context, cfg *config.Config) Result {
	const name = "Edit log"
	store, err := editlog.Open(ctx, cfg.EditLogPath(), editlog.Options{HistoryWindow: cfg.EditLog.HistoryWindow})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d sessions recorded", n)}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (generation API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (generation API unreachable)"
	}
	var failure *llm.Failure
	if errors.As(err, &failure) && failure.StatusCode != 0 {
		return fmt.Sprintf("health check failed (HTTP %d)", failure.StatusCode)
	}
	return err.Error()
}
