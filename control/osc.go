// Package control exposes the render scheduler's public operations over OSC,
// the way live-performance tooling is driven remotely.
package control

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/hypebeast/go-osc/osc"

	"github.com/richinsley/gocompositor/scheduler"
)

// Scheduler is the operation surface the OSC server drives.
type Scheduler interface {
	Register(targetID string)
	Unregister(targetID string)
	UpdateTargetSource(targetID string)
	ForceRender()
	InvalidateNestedCache()
	DebugInfo() scheduler.Debug
}

// Server listens for /compositor/... OSC messages and forwards them to the
// scheduler. Debug queries are answered with a JSON reply message to the
// sender's declared reply port.
type Server struct {
	addr   string
	sched  Scheduler
	log    *log.Logger
	server *osc.Server
}

func NewServer(addr string, sched Scheduler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, sched: sched, log: logger}
}

// Start begins serving. Non-blocking; serve errors are logged.
func (s *Server) Start() error {
	if _, _, err := net.SplitHostPort(s.addr); err != nil {
		return fmt.Errorf("invalid OSC listen address %q: %w", s.addr, err)
	}

	d := osc.NewStandardDispatcher()
	_ = d.AddMsgHandler("/compositor/register", s.handleRegister)
	_ = d.AddMsgHandler("/compositor/unregister", s.handleUnregister)
	_ = d.AddMsgHandler("/compositor/updateSource", s.handleUpdateSource)
	_ = d.AddMsgHandler("/compositor/forceRender", s.handleForceRender)
	_ = d.AddMsgHandler("/compositor/invalidateNestedCache", s.handleInvalidate)
	_ = d.AddMsgHandler("/compositor/debug", s.handleDebug)

	s.server = &osc.Server{
		Addr:       s.addr,
		Dispatcher: d,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			s.log.Errorf("OSC server exited: %v", err)
		}
	}()
	s.log.Infof("OSC control surface listening on %s", s.addr)
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.CloseConnection()
}

// firstString pulls the first string argument from a message.
func firstString(msg *osc.Message) (string, bool) {
	if len(msg.Arguments) == 0 {
		return "", false
	}
	v, ok := msg.Arguments[0].(string)
	return v, ok && v != ""
}

func (s *Server) handleRegister(msg *osc.Message) {
	targetID, ok := firstString(msg)
	if !ok {
		s.log.Warnf("register message without target id: %s", msg.Address)
		return
	}
	s.log.Debugf("OSC register %s", targetID)
	s.sched.Register(targetID)
}

func (s *Server) handleUnregister(msg *osc.Message) {
	targetID, ok := firstString(msg)
	if !ok {
		s.log.Warnf("unregister message without target id: %s", msg.Address)
		return
	}
	s.log.Debugf("OSC unregister %s", targetID)
	s.sched.Unregister(targetID)
}

func (s *Server) handleUpdateSource(msg *osc.Message) {
	targetID, ok := firstString(msg)
	if !ok {
		s.log.Warnf("updateSource message without target id: %s", msg.Address)
		return
	}
	s.sched.UpdateTargetSource(targetID)
}

func (s *Server) handleForceRender(msg *osc.Message) {
	s.sched.ForceRender()
}

func (s *Server) handleInvalidate(msg *osc.Message) {
	s.sched.InvalidateNestedCache()
}

// handleDebug replies with a JSON snapshot. The message carries the reply
// host and port as string+int32 arguments.
func (s *Server) handleDebug(msg *osc.Message) {
	if len(msg.Arguments) < 2 {
		s.log.Warnf("debug query without reply address")
		return
	}
	host, ok := msg.Arguments[0].(string)
	if !ok {
		return
	}
	port, ok := msg.Arguments[1].(int32)
	if !ok {
		// Some senders pack ports as strings.
		str, sok := msg.Arguments[1].(string)
		if !sok {
			return
		}
		p, err := strconv.Atoi(str)
		if err != nil {
			return
		}
		port = int32(p)
	}

	info := s.sched.DebugInfo()
	data, err := json.Marshal(info)
	if err != nil {
		s.log.Errorf("failed to encode debug info: %v", err)
		return
	}

	reply := osc.NewMessage("/reply/compositor/debug")
	reply.Append(string(data))
	client := osc.NewClient(host, int(port))
	if err := client.Send(reply); err != nil {
		s.log.Warnf("failed to send debug reply to %s:%d: %v", host, port, err)
	}
}
