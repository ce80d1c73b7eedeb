package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RunSubprocess executes a synthesis binary with stdin input and returns its
// stdout. Stdin is wired before the process starts to avoid a write race,
// and the context deadline maps onto the timeout branch of the error
// taxonomy so the chain can classify the failure as transient.
func RunSubprocess(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrSynthesisTimeout, name, time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("%s canceled: %w", name, ctxErr)
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrSynthesisFailed, name, msg)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSynthesisFailed, name, err)
	}

	return stdout.Bytes(), nil
}
