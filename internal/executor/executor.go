// Package executor bridges accepted build requests to the external build
// executor process. The protocol is fixed: one JSON object on stdin, no
// argv, stdout captured verbatim, exit 0 meaning success.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"time"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/logfields"
	"git.home.luguber.info/inful/buildrunner/internal/request"
)

// DefaultTimeout bounds a single executor run.
const DefaultTimeout = 10 * time.Minute

// outputTailBytes caps how much captured stdout is relayed to callers.
const outputTailBytes = 4000

// Invocation is the serialized protocol value handed to the executor.
// installation_id keeps the string form as received on the wire.
type Invocation struct {
	Owner          string `json:"owner"`
	Repo           string `json:"repo"`
	HeadSHA        string `json:"head_sha"`
	InstallationID string `json:"installation_id"`
	UploadURL      string `json:"upload_url"`
	RepoDataBase64 string `json:"repo_data_base64"`
}

// Outcome is the result of one executor run.
type Outcome struct {
	Success bool
	// Output is the captured stdout tail, relayed verbatim as opaque
	// diagnostic text; the bridge never interprets it.
	Output string
	// Err classifies the failure when Success is false.
	Err *errors.RunnerError
}

// Bridge invokes the external build executor synchronously. Stateless and
// safe for concurrent use; each call spawns its own subprocess.
type Bridge struct {
	binaryPath string
	timeout    time.Duration
	logger     *slog.Logger
}

// New constructs a Bridge for the executor at binaryPath. A zero timeout
// falls back to DefaultTimeout.
func New(binaryPath string, timeout time.Duration, logger *slog.Logger) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		binaryPath: binaryPath,
		timeout:    timeout,
		logger:     logger,
	}
}

// BinaryPath returns the configured executor path.
func (b *Bridge) BinaryPath() string { return b.binaryPath }

// NewInvocation assembles the protocol value for a validated request and
// its canonical base64 payload.
func NewInvocation(br *request.BuildRequest, payloadBase64 string) Invocation {
	return Invocation{
		Owner:          br.Owner,
		Repo:           br.Repo,
		HeadSHA:        br.HeadSHA,
		InstallationID: br.RawInstallationID,
		UploadURL:      br.UploadURL,
		RepoDataBase64: payloadBase64,
	}
}

// Invoke runs the executor once, writing the invocation to its stdin and
// blocking until it exits or the bridge timeout fires. The timeout context
// is derived from a fresh background context, never the HTTP request
// context: a client disconnect must not abort a started build.
func (b *Bridge) Invoke(br *request.BuildRequest, payloadBase64 string) Outcome {
	inv := NewInvocation(br, payloadBase64)

	encoded, err := json.Marshal(inv)
	if err != nil {
		return Outcome{Err: errors.WrapError(err, errors.CategoryInternal, "build failed").Build()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.binaryPath)
	cmd.Stdin = bytes.NewReader(encoded)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	output := tail(stdout.String(), outputTailBytes)

	if runErr == nil {
		b.logger.Info("Executor finished",
			logfields.Owner(br.Owner),
			logfields.Repo(br.Repo),
			logfields.HeadSHA(br.HeadSHA),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
		return Outcome{Success: true, Output: output}
	}

	if ctx.Err() == context.DeadlineExceeded {
		b.logger.Error("Executor timed out",
			logfields.Owner(br.Owner),
			logfields.Repo(br.Repo),
			slog.Duration("timeout", b.timeout))
		return Outcome{
			Output: output,
			Err: errors.TimeoutError("build timed out").
				WithContext("timeout", b.timeout.String()).
				Build(),
		}
	}

	// Start failure (missing binary, permission denied) and nonzero exit
	// collapse into one failure category; the caller never learns which.
	exitCode := -1
	if ee, ok := runErr.(*exec.ExitError); ok {
		exitCode = ee.ExitCode()
	}
	b.logger.Error("Executor failed",
		logfields.Owner(br.Owner),
		logfields.Repo(br.Repo),
		logfields.ExitCode(exitCode),
		logfields.Error(runErr),
		slog.String("stderr", tail(stderr.String(), outputTailBytes)))

	return Outcome{
		Output: output,
		Err: errors.ExecutorError("build failed").
			WithContext("exit_code", exitCode).
			Build(),
	}
}

// tail returns at most n trailing bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
