// Package hosts adds and removes redirect lines in a hosts file.
//
// Disable only appends and recognises an existing rule by an exact
// "<redirect> <hostname>\n" match, while Enable drops every line that
// contains a hostname anywhere. A hand-edited rule with trailing text is
// therefore removed by Enable but not recognised by Disable.
package hosts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/net/idna"
)

const (
	DefaultPath     = "/etc/hosts"
	DefaultRedirect = "127.0.0.1"
)

// A Blocklist is a set of hostnames redirected in the hosts file at Path.
type Blocklist struct {
	Path      string
	Hostnames []string
	Redirect  string
}

// NewBlocklist validates redirect and converts hostnames to their lower-case
// ASCII form.
func NewBlocklist(path string, hostnames []string, redirect string) (Blocklist, error) {
	if path == "" {
		return Blocklist{}, errors.New("empty hosts file path")
	}
	if net.ParseIP(redirect) == nil {
		return Blocklist{}, fmt.Errorf("invalid redirect address %q", redirect)
	}
	if len(hostnames) == 0 {
		return Blocklist{}, errors.New("no hostnames to block")
	}
	b := Blocklist{Path: path, Redirect: redirect}
	for _, h := range hostnames {
		h = strings.TrimSpace(h)
		if h == "" {
			return Blocklist{}, errors.New("empty hostname")
		}
		ascii, err := idna.Lookup.ToASCII(h)
		if err != nil {
			return Blocklist{}, fmt.Errorf("invalid hostname %q: %w", h, err)
		}
		b.Hostnames = append(b.Hostnames, strings.ToLower(ascii))
	}
	return b, nil
}

func (b Blocklist) Disable() error {
	return Disable(b.Path, b.Hostnames, b.Redirect)
}

func (b Blocklist) Enable() error {
	return Enable(b.Path, b.Hostnames)
}

func (b Blocklist) Blocked() (bool, error) {
	return Blocked(b.Path, b.Hostnames, b.Redirect)
}

// Rule returns the hosts line that redirects hostname.
func Rule(redirect, hostname string) string {
	return redirect + " " + hostname + "\n"
}

// Disable appends a redirect line for each hostname that does not already
// have one. Existing content is left untouched.
func Disable(path string, hostnames []string, redirect string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open hosts file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read hosts file: %w", err)
	}
	content := string(b)

	var add strings.Builder
	for _, h := range hostnames {
		if line := Rule(redirect, h); !strings.Contains(content, line) {
			add.WriteString(line)
		}
	}
	if add.Len() == 0 {
		return nil
	}
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		// Keep the last existing line intact.
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("write hosts file: %w", err)
		}
	}
	if _, err := f.WriteString(add.String()); err != nil {
		return fmt.Errorf("write hosts file: %w", err)
	}
	return f.Close()
}

// Enable removes every line that mentions one of hostnames.
func Enable(path string, hostnames []string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open hosts file: %w", err)
	}
	defer f.Close()

	var kept strings.Builder
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" && !mentionsAny(line, hostnames) {
			kept.WriteString(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read hosts file: %w", err)
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind hosts file: %w", err)
	}
	n, err := f.WriteString(kept.String())
	if err != nil {
		return fmt.Errorf("write hosts file: %w", err)
	}
	if err := f.Truncate(int64(n)); err != nil {
		return fmt.Errorf("truncate hosts file: %w", err)
	}
	return f.Close()
}

// Blocked reports whether every hostname has its exact redirect line.
func Blocked(path string, hostnames []string, redirect string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read hosts file: %w", err)
	}
	content := string(b)
	for _, h := range hostnames {
		if !strings.Contains(content, Rule(redirect, h)) {
			return false, nil
		}
	}
	return true, nil
}

func mentionsAny(line string, hostnames []string) bool {
	for _, h := range hostnames {
		if h != "" && strings.Contains(line, h) {
			return true
		}
	}
	return false
}
