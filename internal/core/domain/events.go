package domain

// EventKind identifies a step of the fetch pipeline.
type EventKind string

const (
	EventConnecting   EventKind = "connecting"
	EventValidated    EventKind = "validated"
	EventDownloading  EventKind = "downloading"
	EventDuplicate    EventKind = "duplicate"
	EventSaved        EventKind = "saved"
	EventWarning      EventKind = "warning"
	EventFailed       EventKind = "failed"
	EventBatchStarted EventKind = "batch_started"
	EventBatchItem    EventKind = "batch_item"
	EventPausing      EventKind = "pausing"
)

// Event is emitted as a fetch or batch progresses. Presentation layers
// decide how to render it.
type Event struct {
	Kind    EventKind
	FetchID string
	URL     string
	Message string
	Result  *FetchResult // set on terminal events
	Index   int          // 1-based position within a batch
	Total   int
}

// EventSink receives pipeline events. A nil sink discards them.
type EventSink func(Event)

// Emit delivers ev if the sink is set.
func (s EventSink) Emit(ev Event) {
	if s != nil {
		s(ev)
	}
}
