package connectors

import "mailsift/internal"

// MailConnector fetches raw messages from one mailbox. Criteria is a
// provider-neutral selector: "UNSEEN" for unread messages, "ALL" for
// everything in the label.
type MailConnector interface {
	FetchInbox(label, criteria string, max int) ([]internal.FetchedMailMessage, error)
}
