// FILE: internal/engine/proxy/process.go
package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var errExited = errors.New("engine process exited")

// process is a child UCI engine. One goroutine owns stdout and feeds lines;
// writes to stdin are serialized.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	exit  chan struct{}
	mu    sync.Mutex
	once  sync.Once
	log   zerolog.Logger
}

func startProcess(path string, args, env []string, log zerolog.Logger) (*process, error) {
	cmd := exec.Command(path, args...)
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	p := &process{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 256),
		exit:  make(chan struct{}),
		log:   log,
	}
	go p.pump(stdout)
	return p, nil
}

func (p *process) pump(r io.Reader) {
	defer close(p.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		p.log.Trace().Str("line", line).Msg("engine >")
		select {
		case p.lines <- line:
		case <-p.exit:
			return
		}
	}
}

func (p *process) send(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Trace().Str("line", line).Msg("engine <")
	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("write %q: %w", line, err)
	}
	return nil
}

// await reads lines until match accepts one. Every line read is passed to
// seen when it is set.
func (p *process) await(ctx context.Context, timeout time.Duration, match func(string) bool, seen func(string)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				return "", errExited
			}
			if seen != nil {
				seen(line)
			}
			if match(line) {
				return line, nil
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// close asks the engine to quit and kills it if it lingers
func (p *process) close(grace time.Duration) error {
	var err error
	p.once.Do(func() { err = p.shutdown(grace) })
	return err
}

func (p *process) shutdown(grace time.Duration) error {
	_ = p.send("quit")
	p.stdin.Close()

	done := make(chan error, 1)
	go func() {
		done <- p.cmd.Wait()
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(grace):
		err = p.cmd.Process.Kill()
		<-done
	}
	close(p.exit)
	return err
}
