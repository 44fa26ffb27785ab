package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

const (
	noticeNoAttachment = "Please upload a file first"
	noticeBusy         = "Another verification is in progress"
)

// SessionChecker reports whether the session gate has been passed
type SessionChecker interface {
	Authenticated() bool
}

// DispatchController owns the per-channel verification state and enforces
// that at most one channel is pending at any time.
type DispatchController struct {
	session  SessionChecker
	store    *AttachmentStore
	analyzer ports.Analyzer
	logger   *slog.Logger

	mu        sync.Mutex
	states    []domain.ChannelState // registry order
	busy      bool
	active    domain.ChannelID
	notice    string
	version   uint64
	listeners []func(domain.Snapshot)

	inflight sync.WaitGroup
}

// NewDispatchController creates a controller with every channel idle
func NewDispatchController(session SessionChecker, store *AttachmentStore, analyzer ports.Analyzer, logger *slog.Logger) *DispatchController {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	channels := domain.Channels()
	states := make([]domain.ChannelState, len(channels))
	for i, ch := range channels {
		states[i] = domain.ChannelState{ID: ch.ID, Status: domain.StatusIdle}
	}

	return &DispatchController{
		session:  session,
		store:    store,
		analyzer: analyzer,
		logger:   logger,
		states:   states,
	}
}

// Dispatch is the handle of one accepted verification request
type Dispatch struct {
	ID        string
	Channel   domain.ChannelID
	StartedAt time.Time

	done  chan struct{}
	state domain.ChannelState
	err   error
}

// Done is closed once the outcome has been applied to the channel
func (d *Dispatch) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the dispatch completes or ctx ends. Ending ctx only
// stops the wait; the dispatch itself always runs to completion.
func (d *Dispatch) Wait(ctx context.Context) (domain.ChannelState, error) {
	select {
	case <-ctx.Done():
		return domain.ChannelState{}, ctx.Err()
	case <-d.done:
		return d.state, d.err
	}
}

// RequestVerification dispatches the primary attachment to the analysis
// endpoint for the given channel. Rejections leave every channel untouched.
func (c *DispatchController) RequestVerification(ctx context.Context, id domain.ChannelID) (*Dispatch, error) {
	ch, ok := domain.LookupChannel(id)
	if !ok {
		return nil, &domain.UnknownChannelError{Value: string(id)}
	}

	if c.session == nil || !c.session.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	c.mu.Lock()

	file, ok := c.store.Primary()
	if !ok {
		c.notice = noticeNoAttachment
		snap := c.changedLocked()
		c.mu.Unlock()
		c.notify(snap)
		return nil, domain.ErrNoAttachment
	}

	if c.busy {
		c.notice = noticeBusy
		active := c.active
		snap := c.changedLocked()
		c.mu.Unlock()
		c.notify(snap)
		c.logger.Debug("verification rejected while busy", "channel", id, "active", active)
		return nil, domain.ErrBusy
	}

	// Accept: pending, busy and active change together
	st := c.stateLocked(id)
	st.Status = domain.StatusPending
	c.busy = true
	c.active = id
	c.notice = ""

	d := &Dispatch{
		ID:        uuid.NewString(),
		Channel:   id,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}
	c.inflight.Add(1)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)

	c.logger.Info("verification dispatched",
		"dispatch", d.ID, "channel", id, "file", file.Name, "size", file.Size)

	go c.run(context.WithoutCancel(ctx), d, ch, file)

	return d, nil
}

// ToggleExpanded flips the expansion of a channel. It is allowed at any time.
func (c *DispatchController) ToggleExpanded(id domain.ChannelID) error {
	if _, ok := domain.LookupChannel(id); !ok {
		return &domain.UnknownChannelError{Value: string(id)}
	}

	c.mu.Lock()
	st := c.stateLocked(id)
	st.Expanded = !st.Expanded
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Snapshot returns a copy of the current state
func (c *DispatchController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Busy reports whether a dispatch is in flight. Callers use it to skip
// work that would only be rejected.
func (c *DispatchController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn is called outside the controller lock, sometimes from the caller of
// RequestVerification, so it must not block. Snapshots from concurrent
// changes may arrive out of order; compare Version.
func (c *DispatchController) Subscribe(fn func(domain.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Wait blocks until every in-flight dispatch has completed
func (c *DispatchController) Wait() {
	c.inflight.Wait()
}

func (c *DispatchController) run(ctx context.Context, d *Dispatch, ch domain.Channel, file domain.AttachedFile) {
	defer c.inflight.Done()

	text, err := c.analyzer.Analyze(ctx, ports.AnalysisRequest{
		RequestID:    d.ID,
		Filename:     file.Name,
		MimeType:     file.MimeType,
		Content:      file.Reader(),
		BackendToken: ch.BackendToken,
	})

	c.mu.Lock()
	st := c.stateLocked(ch.ID)
	if err == nil {
		st.Status = domain.StatusSucceeded
		st.ResultText = text
		st.ErrorMessage = ""
		st.Expanded = true
	} else {
		verr := translateFailure(err)
		st.Status = domain.StatusFailed
		st.ResultText = ""
		st.ErrorMessage = verr.Message
		d.err = verr
	}
	d.state = *st
	// Busy clears only after the outcome is applied
	c.busy = false
	snap := c.changedLocked()
	c.mu.Unlock()

	close(d.done)
	c.notify(snap)

	if err != nil {
		c.logger.Warn("verification failed",
			"dispatch", d.ID, "channel", ch.ID, "elapsed", time.Since(d.StartedAt), "error", err)
		return
	}
	c.logger.Info("verification succeeded",
		"dispatch", d.ID, "channel", ch.ID, "elapsed", time.Since(d.StartedAt), "chars", len(text))
}

func (c *DispatchController) stateLocked(id domain.ChannelID) *domain.ChannelState {
	for i := range c.states {
		if c.states[i].ID == id {
			return &c.states[i]
		}
	}
	// unreachable: ids are checked against the registry first
	panic("dispatch: unknown channel " + string(id))
}

// changedLocked records a state change and returns the new snapshot
func (c *DispatchController) changedLocked() domain.Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *DispatchController) snapshotLocked() domain.Snapshot {
	states := make([]domain.ChannelState, len(c.states))
	copy(states, c.states)

	return domain.Snapshot{
		Version:     c.version,
		Channels:    states,
		Busy:        c.busy,
		Active:      c.active,
		Notice:      c.notice,
		Attachments: c.store.Files(),
	}
}

func (c *DispatchController) notify(snap domain.Snapshot) {
	c.mu.Lock()
	listeners := make([]func(domain.Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// translateFailure turns any analyzer error into a VerificationError with a displayable message
func translateFailure(err error) *domain.VerificationError {
	var verr *domain.VerificationError
	if errors.As(err, &verr) {
		if verr.Message == "" {
			verr.Message = domain.DefaultVerificationFailure
		}
		return verr
	}
	return &domain.VerificationError{
		Kind:    domain.TransportFailure,
		Message: domain.DefaultVerificationFailure,
		Err:     err,
	}
}
