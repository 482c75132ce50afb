package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

const (
	CmdTrigger = "trigger"

	ReplyQueued  = "queued"
	ReplyBusy    = "busy"
	ReplyUnknown = "unknown_command"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type ControlReply struct {
	Status string `json:"status"`
}

// TriggerServer accepts control messages on a unix socket. A trigger plays
// the part of the record button: at most one can be pending, extra presses
// while one waits are answered with ReplyBusy.
type TriggerServer struct {
	path     string
	logger   *slog.Logger
	triggers chan struct{}

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

func NewTriggerServer(path string, logger *slog.Logger) *TriggerServer {
	return &TriggerServer{
		path:     path,
		logger:   logger,
		triggers: make(chan struct{}, 1),
	}
}

// Triggers delivers one value per accepted trigger.
func (s *TriggerServer) Triggers() <-chan struct{} {
	return s.triggers
}

// Fire queues a trigger directly, as a control message would.
func (s *TriggerServer) Fire() bool {
	select {
	case s.triggers <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *TriggerServer) Start() error {
	_ = os.Remove(s.path)

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)

	s.logger.Info("trigger socket listening", "path", s.path)
	return nil
}

func (s *TriggerServer) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}

	err := ln.Close()
	s.wg.Wait()
	_ = os.Remove(s.path)
	return err
}

func (s *TriggerServer) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accepting control connection", "error", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *TriggerServer) handleConn(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		s.logger.Warn("decoding control message", "error", err)
		return
	}

	reply := ControlReply{Status: ReplyUnknown}
	switch msg.Cmd {
	case CmdTrigger:
		if s.Fire() {
			reply.Status = ReplyQueued
		} else {
			reply.Status = ReplyBusy
		}
	default:
		s.logger.Warn("unknown control command", "cmd", msg.Cmd)
	}

	_ = json.NewEncoder(conn).Encode(reply)
}

// SendCommand delivers cmd to the server listening on path and returns its
// reply status.
func SendCommand(path, cmd string) (string, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return "", fmt.Errorf("sending command: %w", err)
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return "", fmt.Errorf("reading reply: %w", err)
	}
	return reply.Status, nil
}

// SendTrigger presses the record button of the instance listening on path.
func SendTrigger(path string) (string, error) {
	return SendCommand(path, CmdTrigger)
}
