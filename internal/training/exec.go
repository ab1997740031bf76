package training

import (
	"bufio"
	"context"
	"io"
	"os/exec"
)

// runStreaming runs a command and forwards combined stdout/stderr to
// logf one line at a time, in order.
func runStreaming(ctx context.Context, logf LineFunc, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return err
	}

	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		done <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logf(scanner.Text())
	}

	return <-done
}
