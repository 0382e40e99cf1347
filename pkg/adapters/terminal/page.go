package terminal

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/prologue/pkg/adapters/clock"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultFadeDuration is the simulated length of the fade transition.
const DefaultFadeDuration = 600 * time.Millisecond

// DefaultCaret is drawn after the text while a caret is visible.
const DefaultCaret = "▌"

// MarkdownRenderer turns finale text into terminal output.
type MarkdownRenderer func(string) (string, error)

type node struct {
	id     string
	text   string
	states map[string]bool
	caret  bool
	fading bool
	hidden bool
}

func (n *node) ID() string { return n.id }

type row struct {
	container, target, caret *node
}

// Page is a terminal UIBinding. Safe for concurrent use.
type Page struct {
	mu        sync.Mutex
	w         io.Writer
	out       *termenv.Output
	profile   termenv.Profile
	nodes     map[string]*node
	rows      []row
	block     *node
	finale    *node
	listeners map[string]map[uint64]func()
	nextSub   uint64
	frames    int
	fades     []ports.Timer
	closed    bool

	fade      time.Duration
	scheduler ports.Scheduler
	markdown  MarkdownRenderer
	caret     string
	accent    string
}

// Option configures a Page.
type Option func(*Page)

// WithFadeDuration sets the simulated transition length. Zero disables transitions.
func WithFadeDuration(d time.Duration) Option {
	return func(p *Page) {
		p.fade = d
	}
}

// WithScheduler replaces the real-time scheduler.
func WithScheduler(s ports.Scheduler) Option {
	return func(p *Page) {
		p.scheduler = s
	}
}

// WithMarkdownRenderer renders the finale text, e.g. with glamour.
func WithMarkdownRenderer(r MarkdownRenderer) Option {
	return func(p *Page) {
		p.markdown = r
	}
}

// WithProfile forces a color profile instead of detecting one.
func WithProfile(profile termenv.Profile) Option {
	return func(p *Page) {
		p.profile = profile
	}
}

// WithCaret sets the caret glyph.
func WithCaret(glyph string) Option {
	return func(p *Page) {
		p.caret = glyph
	}
}

// NewPage lays out a page for s that draws to w.
func NewPage(s domain.Script, w io.Writer, opts ...Option) *Page {
	p := &Page{
		w:         w,
		nodes:     make(map[string]*node),
		listeners: make(map[string]map[uint64]func()),
		fade:      DefaultFadeDuration,
		scheduler: clock.Real{},
		caret:     DefaultCaret,
		accent:    "#a78bfa",
		profile:   profileFor(w),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.out = termenv.NewOutput(w, termenv.WithProfile(p.profile))

	for _, l := range s.Lines {
		p.rows = append(p.rows, row{
			container: p.add(l.Elements.Container),
			target:    p.add(l.Elements.Target),
			caret:     p.add(l.Elements.Caret),
		})
	}
	p.block = p.add(s.BlockID)
	p.finale = p.add(s.FinaleID)
	return p
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal behind w, or fallback.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func profileFor(w io.Writer) termenv.Profile {
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

func (p *Page) add(id string) *node {
	if n, ok := p.nodes[id]; ok {
		return n
	}
	n := &node{id: id, states: make(map[string]bool)}
	p.nodes[id] = n
	return n
}

// Resolve returns the element laid out under id.
func (p *Page) Resolve(id string) (ports.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.nodes[id]
	if !ok {
		return nil, &domain.ElementNotFoundError{ID: id}
	}
	return n, nil
}

// SetDisplayState applies state and redraws. "fadeout" starts the simulated transition.
func (p *Page) SetDisplayState(el ports.Element, state string) error {
	return p.update(el, func(n *node) {
		if n.states[state] {
			return
		}
		n.states[state] = true
		if state == domain.StateFadeOut {
			p.startFade(n)
		}
	})
}

// SetText replaces the element's text and redraws.
func (p *Page) SetText(el ports.Element, text string) error {
	return p.update(el, func(n *node) {
		n.text = text
	})
}

// SetCaretVisible toggles the caret and redraws.
func (p *Page) SetCaretVisible(el ports.Element, visible bool) error {
	return p.update(el, func(n *node) {
		n.caret = visible
	})
}

// OnTransitionFinished registers fn until the subscription is cancelled.
func (p *Page) OnTransitionFinished(el ports.Element, fn func()) (ports.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(el)
	if err != nil {
		return nil, err
	}
	p.nextSub++
	key := p.nextSub
	if p.listeners[n.id] == nil {
		p.listeners[n.id] = make(map[uint64]func())
	}
	p.listeners[n.id][key] = fn
	return &subscription{page: p, id: n.id, key: key}, nil
}

// After delegates to the scheduler.
func (p *Page) After(d time.Duration, fn func()) ports.Timer {
	return p.scheduler.After(d, fn)
}

// Frames returns the number of frames drawn so far.
func (p *Page) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Close stops pending fades and restores the cursor.
// The page draws nothing and notifies no listener afterwards.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, t := range p.fades {
		t.Stop()
	}
	p.fades = nil
	p.out.ShowCursor()
}

// startFade runs with p.mu held.
func (p *Page) startFade(n *node) {
	if p.fade <= 0 {
		n.hidden = true
		return
	}
	n.fading = true
	p.fades = append(p.fades, p.scheduler.After(p.fade, func() { p.finishFade(n) }))
}

func (p *Page) finishFade(n *node) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	n.fading = false
	n.hidden = true
	p.draw()
	keys := make([]uint64, 0, len(p.listeners[n.id]))
	for key := range p.listeners[n.id] {
		keys = append(keys, key)
	}
	p.mu.Unlock()

	slices.Sort(keys)
	for _, key := range keys {
		// A listener cancelled by an earlier one is skipped.
		p.mu.Lock()
		fn, ok := p.listeners[n.id][key]
		if p.closed {
			ok = false
		}
		p.mu.Unlock()
		if ok {
			fn()
		}
	}
}

func (p *Page) update(el ports.Element, apply func(*node)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(el)
	if err != nil {
		return err
	}
	apply(n)
	p.draw()
	return nil
}

func (p *Page) lookup(el ports.Element) (*node, error) {
	if el == nil {
		return nil, &domain.ElementNotFoundError{}
	}
	n, ok := el.(*node)
	if !ok || p.nodes[n.id] != n {
		return nil, &domain.ElementNotFoundError{ID: el.ID()}
	}
	return n, nil
}

// draw renders the whole frame. Runs with p.mu held.
func (p *Page) draw() {
	if p.closed {
		return
	}
	var b strings.Builder

	if !p.block.hidden {
		for _, r := range p.rows {
			if !r.container.states[domain.StateShow] || r.container.hidden {
				continue
			}
			line := r.target.text
			if r.caret.caret {
				line += p.out.String(p.caret).Foreground(p.profile.Color(p.accent)).String()
			}
			if p.block.fading {
				line = p.out.String(line).Faint().String()
			}
			b.WriteString(line)
			b.WriteString("\n\n")
		}
	}

	if p.finale.states[domain.StateShow] && !p.finale.hidden {
		b.WriteString(p.renderFinale())
		b.WriteString("\n")
	}

	p.out.ClearScreen()
	p.out.HideCursor()
	fmt.Fprint(p.w, b.String())
	p.frames++
}

func (p *Page) renderFinale() string {
	text := p.finale.text
	if p.markdown == nil || text == "" {
		return p.out.String(text).Bold().String()
	}
	rendered, err := p.markdown(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

type subscription struct {
	page *Page
	id   string
	key  uint64
	once sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.page.mu.Lock()
		defer s.page.mu.Unlock()
		delete(s.page.listeners[s.id], s.key)
	})
}

var _ ports.UIBinding = (*Page)(nil)
