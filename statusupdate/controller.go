package statusupdate

import (
	"context"
	"log/slog"
)

// Notification texts.
const (
	MsgUpdated        = "Status updated successfully!"
	MsgFailedPrefix   = "Failed to update status: "
	MsgGenericFailure = "An error occurred while updating status"
)

// Outcome is the terminal state of one call to [Controller.Change].
type Outcome int

const (
	// OutcomeUnchanged means the requested status was already displayed; no
	// request was sent.
	OutcomeUnchanged Outcome = iota

	// OutcomeCommitted means the server accepted the change.
	OutcomeCommitted

	// OutcomeRolledBack means the change was rejected or the request failed
	// and the widget was restored.
	OutcomeRolledBack

	// OutcomeSuperseded means a newer selection cancelled this request before
	// it settled.
	OutcomeSuperseded
)

// String returns a lowercase name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRolledBack:
		return "rolled_back"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Controller runs status changes for widgets against an [Updater].
//
// Controller holds no per-widget state, so one controller can serve every
// widget on a page.
type Controller struct {
	updater  Updater
	board    *Board
	notifier *Notifier
	logger   *slog.Logger
}

// NewController creates a [Controller]. A nil board or notifier gets an empty
// default; a nil logger uses [slog.Default].
func NewController(u Updater, board *Board, notifier *Notifier, logger *slog.Logger) *Controller {
	if board == nil {
		board = NewBoard()
	}
	if notifier == nil {
		notifier = NewNotifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		updater:  u,
		board:    board,
		notifier: notifier,
		logger:   logger,
	}
}

// Board returns the badges the controller updates.
func (c *Controller) Board() *Board { return c.board }

// Notifier returns the notifier the controller reports to.
func (c *Controller) Notifier() *Notifier { return c.notifier }

// Change selects status on w and blocks until the request settles.
//
// The returned error is non-nil only when no usable answer was received
// ([ErrTransport] or [ErrMalformedResponse]); the widget is rolled back in
// that case as for a rejected change.
func (c *Controller) Change(ctx context.Context, w *Widget, status string) (Outcome, error) {
	reqCtx, gen, ok := w.begin(ctx, status)
	if !ok {
		return OutcomeUnchanged, nil
	}

	logger := c.logger.With("task_id", w.taskID, "status", status)
	logger.Debug("status change pending")

	result, err := c.updater.UpdateStatus(reqCtx, w.taskID, status)
	accepted := err == nil && result.Success

	w.mu.Lock()
	if gen != w.gen {
		// a newer selection owns the control; only record what the server accepted
		if accepted && w.settledGen < gen {
			w.confirmed = status
			w.settledGen = gen
			c.board.ApplyStatus(w.taskID, status)
		}
		w.mu.Unlock()
		logger.Debug("status change superseded", "accepted", accepted)
		return OutcomeSuperseded, nil
	}

	w.cancel()
	w.cancel = nil
	w.disabled = false
	w.loading = false
	w.settledGen = gen

	if accepted {
		w.confirmed = status
		c.board.ApplyStatus(w.taskID, status)
		w.mu.Unlock()

		logger.Info("status change committed")
		c.notifier.Show(KindSuccess, MsgUpdated)
		return OutcomeCommitted, nil
	}

	w.value = w.confirmed
	revertedTo := w.confirmed
	w.mu.Unlock()

	msg := MsgGenericFailure
	if err != nil {
		logger.Warn("status change failed", "error", err, "reverted_to", revertedTo)
	} else {
		if result.Message != "" {
			msg = MsgFailedPrefix + result.Message
		}
		logger.Info("status change rejected", "message", result.Message, "reverted_to", revertedTo)
	}
	c.notifier.Show(KindDanger, msg)
	return OutcomeRolledBack, err
}
