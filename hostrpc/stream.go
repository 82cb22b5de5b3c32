package hostrpc

import (
	"bufio"
	"context"
	"io"
	"sync"
)

const maxMessageSize = 4 * 1024 * 1024

// streamConn exchanges newline delimited JSON messages, typically over the
// stdin and stdout of the daemon.
type streamConn struct {
	scanner *bufio.Scanner
	mu      sync.Mutex
	w       io.Writer
}

func NewStreamConn(r io.Reader, w io.Writer) Conn {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	return &streamConn{
		scanner: scanner,
		w:       w,
	}
}

// Recv blocks on the underlying reader; ctx is not observed.
func (c *streamConn) Recv(ctx context.Context) ([]byte, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return append([]byte(nil), c.scanner.Bytes()...), nil
}

func (c *streamConn) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(append(data, '\n'))
	return err
}
