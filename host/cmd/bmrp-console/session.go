package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/shlex"

	"bmrp/host/console"
)

// session owns the stream from the board to the terminal. Local commands
// that read the console themselves pause it first.
type session struct {
	con        *console.Console
	out        io.Writer
	stopStream context.CancelFunc
	streamDone chan error
}

func newSession(con *console.Console, out io.Writer) *session {
	return &session{con: con, out: out}
}

func (s *session) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopStream = cancel
	s.streamDone = make(chan error, 1)
	go func() {
		err := s.con.Stream(ctx, s.out)
		if err != nil {
			log.Printf("Console stream stopped: %v", err)
		}
		s.streamDone <- err
	}()
}

func (s *session) stop() {
	if s.stopStream == nil {
		return
	}
	s.stopStream()
	<-s.streamDone
	s.stopStream = nil
}

// run executes a local command line and reports whether to quit
func (s *session) run(line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\r\n", err)
		return false
	}

	switch cmd.name {
	case "":
		return false

	case "quit", "exit", "q":
		return true

	case "help", "?":
		printHelp(s.out)

	case "send":
		if err := s.con.Send([]byte(cmd.text())); err != nil {
			fmt.Fprintf(s.out, "Error: %v\r\n", err)
		}

	case "probe":
		text := cmd.text()
		if text == "" {
			fmt.Fprint(s.out, "Usage: :probe <text>\r\n")
			return false
		}
		s.stop()
		err := s.con.ProbeTimeout([]byte(text), *timeout)
		s.start()
		if err != nil {
			fmt.Fprintf(s.out, "Probe failed: %v\r\n", err)
		} else {
			fmt.Fprintf(s.out, "Echo OK (%d bytes)\r\n", len(text))
		}

	case "banner":
		s.stop()
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		err := s.con.WaitBanner(ctx)
		cancel()
		s.start()
		if err != nil {
			fmt.Fprintf(s.out, "No banner: %v\r\n", err)
		} else {
			fmt.Fprint(s.out, "Banner seen\r\n")
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type ':help' for available commands)\r\n", cmd.name)
	}
	return false
}

type command struct {
	name string
	args []string
}

// text joins the arguments back into the bytes to send
func (c command) text() string {
	return strings.Join(c.args, " ")
}

// parseCommand splits a local command line with shell quoting rules, so
// `:send "a  b"` keeps both spaces
func parseCommand(line string) (command, error) {
	parts, err := shlex.Split(line)
	if err != nil {
		return command{}, fmt.Errorf("bad command line: %w", err)
	}
	if len(parts) == 0 {
		return command{}, nil
	}
	return command{name: parts[0], args: parts[1:]}, nil
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, "\r\nLocal commands:\r\n")
	fmt.Fprint(w, "  :help           - Show this help message\r\n")
	fmt.Fprint(w, "  :send <text>    - Send text without a line ending\r\n")
	fmt.Fprint(w, "  :probe <text>   - Send text and check the echo\r\n")
	fmt.Fprint(w, "  :banner         - Wait for the boot banner (reset the board first)\r\n")
	fmt.Fprint(w, "  :quit/:exit/:q  - Exit the program\r\n")
	fmt.Fprint(w, "  Ctrl-]          - Exit the program\r\n\r\n")
}
