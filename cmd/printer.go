package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vplayer/vplayer/color"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/icon"
	"github.com/vplayer/vplayer/style"
	"golang.org/x/term"
)

// printer writes player events and status notes.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	asJSON bool
	styled bool
}

// newPrinter styles its output only when w is a terminal.
func newPrinter(w io.Writer, asJSON bool) *printer {
	p := &printer{w: w, asJSON: asJSON}
	if f, ok := w.(*os.File); ok && !asJSON {
		p.styled = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *printer) event(m event.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asJSON {
		_ = json.NewEncoder(p.w).Encode(m)
		return
	}

	if !p.styled {
		_, _ = fmt.Fprintln(p.w, m.String())
		return
	}

	_, _ = fmt.Fprintln(p.w, render(m))
}

// note prints a status line that is not an engine event. JSON output stays events only.
func (p *printer) note(i icon.Icon, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asJSON {
		return
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", icon.Get(i), style.Faint(fmt.Sprintf(format, args...)))
}

func render(m event.Message) string {
	name := style.Bold(string(m.Event))

	switch m.Event {
	case event.Initialized:
		return fmt.Sprintf("%s %s %s", icon.Get(icon.Play), name,
			style.Faint(fmt.Sprintf("%s %dx%d", millis(m.Duration), m.Width, m.Height)))
	case event.BufferingStart:
		return fmt.Sprintf("%s %s", icon.Get(icon.Buffering), name)
	case event.BufferingUpdate:
		end := int64(0)
		if len(m.Values) > 0 {
			end = m.Values[len(m.Values)-1][1]
		}
		return fmt.Sprintf("%s %s %s", icon.Get(icon.Progress), name, style.Faint("up to "+millis(end)))
	case event.BufferingEnd:
		return fmt.Sprintf("%s %s", icon.Get(icon.Success), name)
	case event.Completed:
		return fmt.Sprintf("%s %s", icon.Get(icon.Completed), style.Fg(color.Green)(string(m.Event)))
	case event.Error:
		return fmt.Sprintf("%s %s %s", icon.Get(icon.Fail), style.Fg(color.Red)(m.Code), m.Message)
	default:
		return m.String()
	}
}

func millis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
