package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-formsync/pkg/notify"
)

// Notice is one recorded notification.
type Notice struct {
	Kind    string // notify, alert or confirm
	Level   notify.Level
	Title   string
	Message string
}

// Recorder is a notify.Notifier that records everything and answers
// confirmations from a script. Without scripted answers confirmations are
// rejected.
type Recorder struct {
	mu       sync.Mutex
	notices  []Notice
	answers  []bool
	confirms chan struct{}
	// Hold, when set, blocks Confirm until it is closed.
	Hold chan struct{}
}

var _ notify.Notifier = (*Recorder)(nil)

// NewRecorder returns a recorder answering confirmations in order.
func NewRecorder(answers ...bool) *Recorder {
	return &Recorder{answers: answers, confirms: make(chan struct{}, 16)}
}

func (r *Recorder) Notify(msg string, level notify.Level, _ time.Duration) {
	r.record(Notice{Kind: "notify", Level: level, Message: msg})
}

func (r *Recorder) Alert(title, msg string) {
	r.record(Notice{Kind: "alert", Level: notify.LevelError, Title: title, Message: msg})
}

func (r *Recorder) Confirm(ctx context.Context, title, msg string, onAccept, onReject func()) {
	r.record(Notice{Kind: "confirm", Title: title, Message: msg})
	select {
	case r.confirms <- struct{}{}:
	default:
	}
	if r.Hold != nil {
		select {
		case <-r.Hold:
		case <-ctx.Done():
			return
		}
	}
	r.mu.Lock()
	ok := false
	if len(r.answers) > 0 {
		ok = r.answers[0]
		r.answers = r.answers[1:]
	}
	r.mu.Unlock()
	if ok {
		onAccept()
		return
	}
	onReject()
}

// Confirms signals every Confirm call.
func (r *Recorder) Confirms() <-chan struct{} {
	return r.confirms
}

// Notices returns a copy of the recorded notifications.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Messages returns the recorded messages of one kind.
func (r *Recorder) Messages(kind string) []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Kind == kind {
			out = append(out, n.Message)
		}
	}
	return out
}

// Reset forgets recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

func (r *Recorder) record(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}
