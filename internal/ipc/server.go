package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"labelspool/internal/agent"
	"labelspool/internal/daemon"
	"labelspool/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Labelspool", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logging.WithComponent(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.Blocked = status.Agent.Blocked
	resp.Ticks = status.Agent.TicksComplete
	resp.LastError = status.Agent.LastError
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.PID = os.Getpid()
	if !status.Agent.LastTickAt.IsZero() {
		resp.LastTickAt = status.Agent.LastTickAt.UTC().Format(time.RFC3339)
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	records, err := s.daemon.History(s.ctx, limit)
	if err != nil {
		return err
	}
	resp.Orders = make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		resp.Orders = append(resp.Orders, HistoryRecord{
			OrderID:   rec.OrderID,
			PrintedAt: rec.PrintedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil
}

func (s *service) Queue(_ QueueRequest, resp *QueueResponse) error {
	labels, err := s.daemon.Queue(s.ctx)
	if err != nil {
		return err
	}
	resp.Labels = make([]QueueRecord, 0, len(labels))
	for _, lbl := range labels {
		resp.Labels = append(resp.Labels, QueueRecord{
			ID:        lbl.ID,
			OrderID:   lbl.OrderID,
			Customer:  lbl.Context.CustomerName,
			Platform:  lbl.Context.Platform,
			Courier:   lbl.Courier,
			Ext:       lbl.Ext,
			CreatedAt: lbl.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	err := s.daemon.TestNotification(s.ctx)
	switch {
	case errors.Is(err, agent.ErrNoOrderObserved):
		resp.Sent = false
		resp.Message = "no order observed yet"
		return nil
	case err != nil:
		resp.Sent = false
		resp.Message = "failed to send notification"
		return err
	default:
		resp.Sent = true
		resp.Message = "test notification sent"
		return nil
	}
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TablesPresent = append(resp.TablesPresent, health.TablesPresent...)
	resp.MissingTables = append(resp.MissingTables, health.MissingTables...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.ProcessedRecords = health.ProcessedRecords
	resp.DeferredLabels = health.DeferredLabels
	resp.Error = health.Error
	return err
}
