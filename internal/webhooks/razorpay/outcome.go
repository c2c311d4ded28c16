package razorpaywebhook

// Disposition classifies how an event was handled.
type Disposition string

const (
	DispositionApplied Disposition = "applied"
	DispositionIgnored Disposition = "ignored"
	DispositionFailed  Disposition = "failed"
)

// Outcome reports the handling result of one webhook event. The gateway is
// always acknowledged; Outcome carries what happened for logging and metrics.
type Outcome struct {
	Disposition Disposition
	Detail      string
}

// Applied means the event changed local state.
func Applied() Outcome {
	return Outcome{Disposition: DispositionApplied}
}

// Ignored means the event required no local change.
func Ignored(detail string) Outcome {
	return Outcome{Disposition: DispositionIgnored, Detail: detail}
}

// Failed means the event should have applied but could not.
func Failed(detail string) Outcome {
	return Outcome{Disposition: DispositionFailed, Detail: detail}
}
