package quotes

// SubmitInput captures a quote submission: the session whose cart is being
// snapshotted plus the requester's contact details.
type SubmitInput struct {
	SessionID    string
	ContactName  string
	ContactEmail string
	Company      string
	Message      string
}
