// Package statusupdate drives a task status "select" widget against a
// HostPulse server without a browser.
//
// A status change moves a [Widget] through Idle → Pending → Committed or
// RolledBack:
//
//	client, _ := statusupdate.NewClient("http://localhost:3000",
//	    statusupdate.WithTokenSource(statusupdate.StaticToken(token)),
//	)
//	board := statusupdate.NewBoard()
//	board.AddBadge("42", "Pending", "badge", "bg-warning")
//	notes := statusupdate.NewNotifier()
//	ctrl := statusupdate.NewController(client, board, notes, logger)
//
//	w := statusupdate.NewWidget("42", "pending")
//	outcome, err := ctrl.Change(ctx, w, "completed")
//
// On success every badge bound to the task shows the new label and style
// class. On a rejected change or a transport failure the widget's value is
// restored to the last confirmed status. Either way a transient
// [Notification] is shown and the control is re-enabled.
//
// # Sequencing
//
// Selecting a new value while a request is still pending cancels the earlier
// request. The earlier call returns [OutcomeSuperseded] and leaves the
// displayed value, the disabled and loading flags and notifications to the
// newer request, so the control stays disabled until the latest selection
// settles.
//
// If the server nevertheless accepted the earlier request, and no newer
// request has settled yet, that status becomes the confirmed value and the
// task's badges are relabelled. A later rejection then reverts the widget to
// that status rather than to the value shown before either request.
package statusupdate
