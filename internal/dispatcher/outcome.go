package dispatcher

// NotificationStatus summarizes what happened to the notification step.
type NotificationStatus string

const (
	// NotificationSent means both the operations summary and, when a contact
	// email was given, the customer confirmation were accepted by the relay.
	NotificationSent NotificationStatus = "sent"
	// NotificationPartiallySent means the operations summary went out but the
	// customer confirmation did not.
	NotificationPartiallySent NotificationStatus = "partially_sent"
	// NotificationSkipped means mail is not configured.
	NotificationSkipped NotificationStatus = "skipped"
	// NotificationFailed means nothing was delivered.
	NotificationFailed NotificationStatus = "failed"
)

// NotificationOutcome is the result of notifying about one dispatch request.
// It is logged, never returned to the submitter as an error.
type NotificationOutcome struct {
	Status    NotificationStatus
	Delivered int
	Reason    string
}

func sent(n int) NotificationOutcome {
	return NotificationOutcome{Status: NotificationSent, Delivered: n}
}

func skipped(reason string) NotificationOutcome {
	return NotificationOutcome{Status: NotificationSkipped, Reason: reason}
}

func failed(reason string) NotificationOutcome {
	return NotificationOutcome{Status: NotificationFailed, Reason: reason}
}

func partial(n int, reason string) NotificationOutcome {
	return NotificationOutcome{Status: NotificationPartiallySent, Delivered: n, Reason: reason}
}
