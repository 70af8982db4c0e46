package notice

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Notice is a transient, non-blocking message shown to the user.
type Notice struct {
	Message string
	Success bool
	At      time.Time
}

type Notifier interface {
	Notify(message string, success bool)
}

// Board keeps the latest notice for the status line, logs every notice
// and forwards it to the listener, if one is set.
type Board struct {
	mutex    sync.Mutex
	latest   *Notice
	ttl      time.Duration
	now      func() time.Time
	listener func(Notice)
}

func NewBoard(ttl time.Duration) *Board {
	return &Board{
		ttl: ttl,
		now: time.Now,
	}
}

// OnNotice sets the func called (outside the board lock) on every new notice.
func (b *Board) OnNotice(listener func(Notice)) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.listener = listener
}

func (b *Board) Notify(message string, success bool) {
	if success {
		log.Infof("notice: %s", message)
	} else {
		log.Warnf("notice: %s", message)
	}

	n := Notice{
		Message: message,
		Success: success,
		At:      b.now(),
	}

	b.mutex.Lock()
	b.latest = &n
	listener := b.listener
	b.mutex.Unlock()

	if listener != nil {
		listener(n)
	}
}

// Current returns the latest notice while it has not expired.
func (b *Board) Current() (Notice, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.latest == nil {
		return Notice{}, false
	}
	if b.ttl > 0 && b.now().Sub(b.latest.At) > b.ttl {
		return Notice{}, false
	}
	return *b.latest, true
}
