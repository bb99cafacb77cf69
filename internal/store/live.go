package store

import (
	"time"

	"github.com/claimwise/intake-backend/internal/interview"
	"github.com/claimwise/intake-backend/internal/voice"
	gocache "github.com/patrickmn/go-cache"
)

// Runtime is the in-memory state of one live interview: the question engine
// and the voice capture machine. It exists only while the claimant is active;
// the persisted snapshot is the source of truth after eviction.
type Runtime struct {
	Session *interview.Session
	Voice   *voice.Machine

	// CallbackURL is the per-interview override supplied at start; empty means
	// the configured default endpoint.
	CallbackURL string
}

// Live keeps runtimes keyed by interview id with a sliding TTL. Evicted voice
// machines are torn down so no synthesis or capture goroutine outlives its
// interview.
type Live struct {
	cache *gocache.Cache
}

func NewLive(ttl time.Duration) *Live {
	c := gocache.New(ttl, ttl/2)
	c.OnEvicted(func(_ string, value interface{}) {
		if rt, ok := value.(*Runtime); ok && rt.Voice != nil {
			rt.Voice.Teardown()
		}
	})
	return &Live{cache: c}
}

func (l *Live) Get(interviewID string) (*Runtime, bool) {
	value, found := l.cache.Get(interviewID)
	if !found {
		return nil, false
	}
	rt, ok := value.(*Runtime)
	if !ok {
		return nil, false
	}
	return rt, true
}

func (l *Live) Put(interviewID string, rt *Runtime) {
	l.cache.SetDefault(interviewID, rt)
}

// Touch extends the TTL of an active runtime.
func (l *Live) Touch(interviewID string) {
	if value, found := l.cache.Get(interviewID); found {
		l.cache.SetDefault(interviewID, value)
	}
}

func (l *Live) Remove(interviewID string) {
	l.cache.Delete(interviewID)
}

// Shutdown tears down every cached runtime and empties the store. Called on
// application stop so no recognizer or recorder handle outlives the server.
// go-cache's Flush skips the eviction hook, so teardown runs explicitly.
func (l *Live) Shutdown() {
	for _, item := range l.cache.Items() {
		if rt, ok := item.Object.(*Runtime); ok && rt.Voice != nil {
			rt.Voice.Teardown()
		}
	}
	l.cache.Flush()
}
