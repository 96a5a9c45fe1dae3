// internal/browser/harvester.go
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ConsoleMessage is one captured page console entry, kept for diagnostics.
type ConsoleMessage struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Harvester listens to CDP network and runtime events for one tab. It tracks
// in-flight requests so the stability monitor can wait for network idle, and
// captures console output for failure diagnostics.
type Harvester struct {
	logger *zap.Logger

	sessionCtx     context.Context
	listenerCtx    context.Context
	cancelListener context.CancelFunc

	lock         sync.RWMutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	console      []ConsoleMessage
	isStarted    bool
}

// NewHarvester creates a harvester bound to the given tab context.
func NewHarvester(sessionCtx context.Context, logger *zap.Logger) *Harvester {
	return &Harvester{
		sessionCtx:   sessionCtx,
		logger:       logger.Named("harvester"),
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

// Start enables the CDP domains and begins listening. Idempotent.
func (h *Harvester) Start(ctx context.Context) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.isStarted {
		return nil
	}

	// Listener lifetime is tied to the session: if the tab dies, so does it.
	h.listenerCtx, h.cancelListener = context.WithCancel(h.sessionCtx)
	go h.listen()

	if err := chromedp.Run(ctx, network.Enable(), runtime.Enable()); err != nil {
		h.cancelListener()
		return err
	}

	h.isStarted = true
	h.logger.Debug("Harvester listening for events.")
	return nil
}

func (h *Harvester) listen() {
	chromedp.ListenTarget(h.listenerCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			h.trackRequest(e.RequestID)
		case *network.EventLoadingFinished:
			h.releaseRequest(e.RequestID)
		case *network.EventLoadingFailed:
			h.releaseRequest(e.RequestID)
		case *runtime.EventConsoleAPICalled:
			h.recordConsole(e)
		case *runtime.EventExceptionThrown:
			h.recordException(e)
		}
	})
}

func (h *Harvester) trackRequest(id network.RequestID) {
	h.lock.Lock()
	h.inflight[id] = struct{}{}
	h.lastActivity = time.Now()
	h.lock.Unlock()
}

func (h *Harvester) releaseRequest(id network.RequestID) {
	h.lock.Lock()
	delete(h.inflight, id)
	h.lastActivity = time.Now()
	h.lock.Unlock()
}

func (h *Harvester) recordConsole(e *runtime.EventConsoleAPICalled) {
	text := ""
	for _, arg := range e.Args {
		if arg.Value != nil {
			if text != "" {
				text += " "
			}
			text += string(arg.Value)
		}
	}
	h.lock.Lock()
	h.console = append(h.console, ConsoleMessage{
		Level:     string(e.Type),
		Text:      text,
		Timestamp: time.Now(),
	})
	h.lock.Unlock()
}

func (h *Harvester) recordException(e *runtime.EventExceptionThrown) {
	text := "uncaught exception"
	if e.ExceptionDetails != nil {
		text = e.ExceptionDetails.Text
		if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
			text = e.ExceptionDetails.Exception.Description
		}
	}
	h.lock.Lock()
	h.console = append(h.console, ConsoleMessage{
		Level:     "exception",
		Text:      text,
		Timestamp: time.Now(),
	})
	h.lock.Unlock()
}

// WaitNetworkIdle polls until no request has been in flight and no network
// activity has occurred for quietPeriod, or ctx expires.
func (h *Harvester) WaitNetworkIdle(ctx context.Context, quietPeriod time.Duration) error {
	interval := quietPeriod / 2
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("WaitNetworkIdle aborted.", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
			h.lock.RLock()
			inflightCount := len(h.inflight)
			last := h.lastActivity
			h.lock.RUnlock()

			if inflightCount == 0 && time.Since(last) >= quietPeriod {
				return nil
			}
		}
	}
}

// ConsoleLogs returns a copy of the captured console output.
func (h *Harvester) ConsoleLogs() []ConsoleMessage {
	h.lock.RLock()
	defer h.lock.RUnlock()
	out := make([]ConsoleMessage, len(h.console))
	copy(out, h.console)
	return out
}

// Stop halts event collection. Safe to call more than once.
func (h *Harvester) Stop() {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.cancelListener != nil {
		h.cancelListener()
		h.cancelListener = nil
	}
	h.isStarted = false
}
