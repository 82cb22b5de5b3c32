package hostrpc

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
)

// wsConn carries one JSON-RPC message per websocket text frame.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Recv(ctx context.Context) ([]byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, io.EOF
		}
		return nil, err
	}
	if typ != websocket.MessageText {
		log.Printf("UNUSUAL: hostrpc received a binary websocket message")
	}
	return data, nil
}

func (c *wsConn) Send(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// WebsocketHandler serves every accepted websocket connection until the
// host disconnects.
func (s *Server) WebsocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Printf("hostrpc: websocket accept from %s failed: %v", r.RemoteAddr, err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		conn.SetReadLimit(maxMessageSize)

		log.Printf("hostrpc: host connected from %s", r.RemoteAddr)
		if err := s.Serve(r.Context(), &wsConn{conn: conn}); err != nil {
			if status := websocket.CloseStatus(err); status == -1 {
				_ = conn.Close(websocket.StatusInternalError, "serve error")
			}
		}
	})
}
