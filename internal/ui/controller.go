package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/easycodehow/spark/internal/storage"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Controller owns the single State of the memo screen. Commands are applied
// one at a time.
type Controller struct {
	store MemoStore
	kv    storage.Storage
	clip  Clipboard
	md    *Markdown
	log   *zap.Logger

	mu    sync.Mutex
	state State
}

type ControllerOption func(*Controller)

func WithClipboard(c Clipboard) ControllerOption {
	return func(ctrl *Controller) { ctrl.clip = c }
}

func NewController(store MemoStore, kv storage.Storage, log *zap.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		store: store,
		kv:    kv,
		clip:  systemClipboard{},
		md:    NewMarkdown(),
		log:   log,
		state: NewState(DefaultPreferences()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPreferences re-applies the stored display preferences. Call it before
// the first render.
func (c *Controller) LoadPreferences(ctx context.Context) error {
	prefs, err := LoadPreferences(ctx, c.kv)

	c.mu.Lock()
	c.state.Prefs = prefs
	c.mu.Unlock()
	return err
}

// Dispatch applies cmd and performs the effects that belong to the runtime:
// alerts and prompts land in State, preferences are stored and clipboard
// writes are carried out. The remaining effects are returned to the caller.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) ([]Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	st.Flash, st.Prompt = "", ""

	next, effects, err := Apply(ctx, c.store, st, cmd)
	if err != nil {
		c.log.Error("command failed", zap.String("command", fmt.Sprintf("%T", cmd)), zap.Error(err))
		st.Flash = "Something went wrong: " + err.Error()
		c.state = st
		return nil, err
	}

	var flashes []string
	var rest []Effect
	for _, e := range effects {
		switch e := e.(type) {
		case Alert:
			flashes = append(flashes, e.Message)
		case Confirm:
			next.Prompt = e.Prompt
		case SavePreference:
			if err := c.kv.Set(ctx, e.Key, e.Value); err != nil {
				c.log.Warn("failed to save preference", zap.String("key", e.Key), zap.Error(err))
				flashes = append(flashes, fmt.Sprintf(msgPrefSaveFailed, err))
			}
		case WriteClipboard:
			if err := c.clip.WriteAll(e.Text); err != nil {
				c.log.Warn("clipboard write failed", zap.Error(err))
				flashes = append(flashes, fmt.Sprintf(msgCopyFailed, err))
			} else {
				flashes = append(flashes, MsgCopied)
			}
		default:
			rest = append(rest, e)
		}
	}
	next.Flash = strings.Join(flashes, " ")

	c.state = next
	return rest, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View derives the screen from the current state and collection.
func (c *Controller) View() View {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	return BuildView(st, c.store.All(), c.md)
}
