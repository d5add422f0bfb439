package live

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toastd/internal/errors"
)

// maxMessageSize caps client messages. The client only sends pongs.
const maxMessageSize = 1024

// connection is one browser attached to a session.
type connection struct {
	ws   *websocket.Conn
	done chan struct{}
	once sync.Once

	// stopped is closed once nothing writes to ws any more.
	stopped  chan struct{}
	stopOnce sync.Once
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{ws: ws, done: make(chan struct{}), stopped: make(chan struct{})}
}

func (c *connection) stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// close shuts the connection once. With goodbye set, a normal close
// message is sent first.
func (c *connection) close(goodbye bool) {
	c.once.Do(func() {
		close(c.done)
		if goodbye {
			c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
		}
		c.ws.Close()
	})
}

// Serve attaches a browser to the session and blocks until it goes away.
// A new connection replaces the previous one. The first frame sent is a
// sync frame listing the toasts still in the page.
func (s *Session) Serve(ctx context.Context, ws *websocket.Conn) error {
	if s.closed.Load() {
		ws.Close()
		return errors.New("T011")
	}

	hids, err := s.ToastHIDs(ctx)
	if err != nil {
		ws.Close()
		return err
	}

	c := newConnection(ws)
	s.mu.Lock()
	prev := s.conn
	s.conn = c
	s.mu.Unlock()
	if prev != nil {
		s.logger.Debug("connection replaced")
		prev.close(true)
		// The old writer must hand back its frames before this one reads
		// the outbox.
		select {
		case <-prev.stopped:
		case <-ctx.Done():
			c.stop()
			ws.Close()
			return ctx.Err()
		}
	}
	s.touch()

	started := false
	defer func() {
		if !started {
			c.stop()
		}
		s.mu.Lock()
		if s.conn == c {
			s.conn = nil
		}
		s.mu.Unlock()
		c.close(false)
		s.touch()
	}()

	if err := s.write(c, Frame{Op: OpSync, HIDs: hids}); err != nil {
		return errors.New("T050").Wrap(err)
	}
	for _, f := range s.takeCarried() {
		if err := s.write(c, f); err != nil {
			s.carry(f)
			return errors.New("T050").Wrap(err)
		}
	}

	started = true
	go s.writeLoop(c)
	s.readLoop(c)
	return nil
}

// readLoop reads client messages until the connection fails or closes.
func (s *Session) readLoop(c *connection) {
	c.ws.SetReadLimit(maxMessageSize)

	for {
		c.ws.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
			}
			return
		}

		s.touch()

		frame, err := DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			continue
		}

		switch frame.Op {
		case OpPong:
			s.logger.Debug("received pong")
		default:
			s.logger.Warn("unexpected frame from client", "op", string(frame.Op))
		}
	}
}

// writeLoop sends queued frames and heartbeats to c.
func (s *Session) writeLoop(c *connection) {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()
	// A failed write ends the connection so readLoop returns too.
	defer c.stop()
	defer c.close(false)

	for {
		select {
		case f := <-s.outbox:
			select {
			case <-c.done:
				s.carry(f)
				return
			default:
			}
			if err := s.write(c, f); err != nil {
				s.logger.Debug("write failed, frame kept for the next connection", "op", string(f.Op), "error", err)
				s.carry(f)
				return
			}

		case <-ticker.C:
			if err := s.write(c, Frame{Op: OpPing}); err != nil {
				return
			}

		case <-c.done:
			return

		case <-s.done:
			return
		}
	}
}

// carry keeps a frame that a closing connection could not deliver. The
// next connection sends carried frames right after its sync frame.
func (s *Session) carry(f Frame) {
	s.mu.Lock()
	s.carried = append(s.carried, f)
	s.mu.Unlock()
}

func (s *Session) takeCarried() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := s.carried
	s.carried = nil
	return frames
}

// write encodes and sends a single frame. Only one goroutine writes to a
// connection at a time: Serve before writeLoop starts, then writeLoop.
func (s *Session) write(c *connection, f Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.recorder.FramesSent(1)
	return nil
}
