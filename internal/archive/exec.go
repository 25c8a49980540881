package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/oshokin/acap-packager/internal/logger"
)

// runTar executes tar inside the staging directory and forwards its output
// to the log one line at a time.
func runTar(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, tarBinary, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", tarBinary, err)
	}

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		forwardLines(ctx, stdout, logger.Infof)
	}()

	go func() {
		defer wg.Done()
		forwardLines(ctx, stderr, logger.Warnf)
	}()

	wg.Wait()

	return cmd.Wait()
}

// forwardLines copies process output into the log.
func forwardLines(ctx context.Context, source io.Reader, log func(context.Context, string, ...any)) {
	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		log(ctx, "%s: %s", tarBinary, scanner.Text())
	}
}
