package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/stream"
)

// Server defaults.
const (
	DefaultAddress      = ":7878"
	DefaultQueueSize    = 16
	DefaultWriteTimeout = 5 * time.Second
)

// Server errors.
var (
	ErrNilSource     = errors.New("feed: nil source")
	ErrServerRunning = errors.New("feed: server already running")
	ErrServerStopped = errors.New("feed: server not running")
	ErrInvalidQueue  = errors.New("feed: queue size must be positive")
)

// Source is the state stream a Server publishes. *bearing.Sensor
// satisfies it.
type Source interface {
	ID() string
	Subscribe(fn func(bearing.State)) *stream.Subscription
	Done() <-chan struct{}
}

var _ Source = (*bearing.Sensor)(nil)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address to listen on. Empty means DefaultAddress.
	Address string

	// QueueSize is the number of snapshots buffered per connection
	// before the oldest is dropped. Zero means DefaultQueueSize.
	QueueSize int

	// WriteTimeout bounds a single frame write. Zero means
	// DefaultWriteTimeout.
	WriteTimeout time.Duration

	// Logger receives connection lifecycle messages. Nil discards.
	Logger *slog.Logger

	// Clock stamps snapshots. Nil means the wall clock.
	Clock clock.Clock
}

func (c ServerConfig) withDefaults() (ServerConfig, error) {
	if c.QueueSize < 0 {
		return c, fmt.Errorf("%w: %d", ErrInvalidQueue, c.QueueSize)
	}
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c, nil
}

// Server streams snapshots of a Source to every connected client.
type Server struct {
	src    Source
	config ServerConfig
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]*feedConn
	running  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a server for src.
func NewServer(src Source, config ServerConfig) (*Server, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Server{
		src:    src,
		config: config,
		logger: config.Logger.With("component", "feed", "sensor_id", src.ID()),
		conns:  make(map[string]*feedConn),
	}, nil
}

// Start begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrServerRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("feed: listen %s: %w", s.config.Address, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("feed listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and every connection, then waits for the
// connection goroutines to exit.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return ErrServerStopped
	}

	s.mu.Lock()
	s.cancel()
	err := s.listener.Close()
	for _, c := range s.conns {
		c.close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the listening TCP port, or 0 before Start.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("feed accept failed", "error", err)
			continue
		}

		c := &feedConn{
			id:    uuid.New().String(),
			nc:    nc,
			out:   NewFrameWriter(nc),
			queue: make(chan Snapshot, s.config.QueueSize),
			done:  make(chan struct{}),
		}

		s.mu.Lock()
		if !s.running.Load() {
			s.mu.Unlock()
			nc.Close()
			return
		}
		s.conns[c.id] = c
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(c)
	}
}

func (s *Server) serve(c *feedConn) {
	defer s.wg.Done()

	logger := s.logger.With("conn_id", c.id, "remote", c.nc.RemoteAddr().String())
	logger.Info("feed client connected")

	defer func() {
		c.close()
		s.mu.Lock()
		delete(s.conns, c.id)
		s.mu.Unlock()
		logger.Info("feed client disconnected", "dropped", c.dropped.Load())
	}()

	// Clients never send; a read returning means the peer went away.
	go func() {
		_, _ = io.Copy(io.Discard, c.nc)
		c.close()
	}()

	sensorID := s.src.ID()
	var seq uint64
	c.sub = s.src.Subscribe(func(st bearing.State) {
		seq++
		c.push(NewSnapshot(sensorID, seq, st, s.config.Clock.Now()))
	})
	defer c.sub.Unsubscribe()

	srcDone := s.src.Done()
	for {
		select {
		case snap := <-c.queue:
			if err := s.write(c, snap); err != nil {
				logger.Debug("feed write failed", "error", err)
				return
			}
		case <-srcDone:
			// Deliver what is queued, then hang up.
			for {
				select {
				case snap := <-c.queue:
					if err := s.write(c, snap); err != nil {
						return
					}
				default:
					return
				}
			}
		case <-c.done:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) write(c *feedConn, snap Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := c.nc.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	return c.out.WriteFrame(data)
}

// feedConn is one client connection.
type feedConn struct {
	id    string
	nc    net.Conn
	out   *FrameWriter
	queue chan Snapshot
	sub   *stream.Subscription

	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// push enqueues snap, evicting the oldest queued snapshot when full.
// Never blocks.
func (c *feedConn) push(snap Snapshot) {
	for {
		select {
		case c.queue <- snap:
			return
		default:
		}
		select {
		case <-c.queue:
			c.dropped.Add(1)
		default:
		}
	}
}

func (c *feedConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.nc.Close()
	})
}
