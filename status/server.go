package status

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/gliderlabs/ssh"
)

// Info describes the run being served.
type Info struct {
	RunID    string
	Username string
	Category string
	Report   string
}

type Server struct {
	info    Info
	board   *Board
	limiter *ConnectionRateLimiter
	srv     *ssh.Server
}

// NewServer creates a status server listening on addr. If hostKeyPath names
// an existing file it is used as the host key; otherwise a key is generated
// for the lifetime of the process.
func NewServer(addr, hostKeyPath string, info Info, board *Board) (*Server, error) {
	s := &Server{
		info:    info,
		board:   board,
		limiter: NewConnectionRateLimiter(),
	}
	s.srv = &ssh.Server{
		Addr:    addr,
		Handler: s.handle,
	}

	if hostKeyPath != "" {
		if _, err := os.Stat(hostKeyPath); err == nil {
			if err := s.srv.SetOption(ssh.HostKeyFile(hostKeyPath)); err != nil {
				return nil, fmt.Errorf("failed to load host key: %w", err)
			}
		} else {
			log.Printf("host key %s not found, using a generated key", hostKeyPath)
		}
	}
	return s, nil
}

// ListenAndServe blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	log.Printf("starting status console on %s ...", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, ssh.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) Close() error {
	return s.srv.Close()
}

func (s *Server) handle(sess ssh.Session) {
	remote := sess.RemoteAddr().String()
	ip := remote
	if host, _, err := net.SplitHostPort(remote); err == nil {
		ip = host
	}

	if !s.limiter.CheckAndRecord(ip) {
		fmt.Fprintln(sess, "Too many connections, try again in a minute.")
		_ = sess.Exit(1)
		return
	}

	log.Printf("status session from %s (%s)", ip, sess.User())
	s.Render(sess, time.Now())
	_ = sess.Exit(0)
}

// Render writes the status page to w.
func (s *Server) Render(w io.Writer, now time.Time) {
	blocked, ticks := s.board.State()
	state := "not blocked"
	if blocked {
		state = "blocked"
	}

	fmt.Fprintf(w, "Rating Tourniquet (for lichess)\r\n")
	fmt.Fprintf(w, "run:   %s\r\n", s.info.RunID)
	fmt.Fprintf(w, "user:  %s (%s)\r\n", s.info.Username, s.info.Category)
	fmt.Fprintf(w, "time:  %s\r\n", now.Format("15:04"))
	if ticks == 0 {
		fmt.Fprintf(w, "state: waiting for first check\r\n")
	} else {
		fmt.Fprintf(w, "state: %s (%d checks)\r\n", state, ticks)
	}
	fmt.Fprintf(w, "\r\n")
	if report := strings.TrimRight(s.info.Report, "\n"); report != "" {
		for _, line := range strings.Split(report, "\n") {
			fmt.Fprintf(w, "%s\r\n", line)
		}
	}

	msgs := s.board.Messages()
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintf(w, "\r\nrecent checks:\r\n")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s %s\r\n", m.Time.Format("15:04:05"), m.Text)
	}
}
