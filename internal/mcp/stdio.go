package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

const maxLineBytes = 10 << 20

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// replies to out, one per line. Requests are handled concurrently, so replies
// may come back out of order. It returns once in is exhausted and every
// pending request has been answered.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var mu sync.Mutex
	enc := json.NewEncoder(out)

	g, ctx := errgroup.WithContext(ctx)

	s.logger.Info().Msg("Serving MCP over stdio")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer.
		data := append([]byte(nil), line...)

		g.Go(func() error {
			resp := s.HandleMessage(ctx, data)
			if resp == nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			return nil
		})
	}

	scanErr := scanner.Err()
	if err := g.Wait(); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read input: %w", scanErr)
	}
	s.logger.Info().Msg("Input closed, stopping stdio server")
	return nil
}
