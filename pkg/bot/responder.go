package bot

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Intent labels the rule class that produced a reply. The intent class is
// deterministic for a given input; only the phrasing of multi-variant
// replies is randomized.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentThanks       Intent = "thanks"
	IntentCapabilities Intent = "capabilities"
	IntentReport       Intent = "report"
	IntentStations     Intent = "stations"
	IntentFeed         Intent = "feed"
	IntentSafety       Intent = "safety"
	IntentFallback     Intent = "fallback"
)

var (
	greetingRe   = regexp.MustCompile(`^(hi|hello|hey|greetings|good (morning|afternoon|evening))[!.]?$`)
	thanksRe     = regexp.MustCompile(`^(thanks|thank you|appreciate it|cheers)[!.]?$`)
	capabilityRe = regexp.MustCompile(`what can you do|how can you help|your (role|purpose)`)
)

// rule pairs a predicate with a reply generator. Rules are evaluated in
// slice order; the first match wins and no scoring happens.
type rule struct {
	intent Intent
	match  func(in string) bool
	reply  func(r *Responder) string
}

func containsAny(in string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(in, s) {
			return true
		}
	}
	return false
}

var rules = []rule{
	{IntentGreeting, greetingRe.MatchString, func(r *Responder) string { return r.pick(greetingReplies) }},
	{IntentThanks, thanksRe.MatchString, func(*Responder) string { return thanksReply }},
	{IntentCapabilities, capabilityRe.MatchString, func(*Responder) string { return capabilityReply }},
	{IntentReport, func(in string) bool { return containsAny(in, "report", "crime") }, func(*Responder) string { return reportPrompt }},
	{IntentStations, func(in string) bool { return containsAny(in, "station", "police") }, func(*Responder) string { return stationsReply }},
	{IntentFeed, func(in string) bool { return containsAny(in, "incident", "feed") }, func(*Responder) string { return feedReply }},
	{IntentSafety, func(in string) bool { return containsAny(in, "safety", "tip", "prevention") }, func(*Responder) string { return safetyTipsLong }},
}

// Responder is the intent-matching core: a pure text-in/text-out function
// over an ordered rule list. It holds no external state beyond its RNG and
// never touches storage.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder returns a Responder seeded from the clock.
func NewResponder() *Responder {
	return NewResponderWithSeed(time.Now().UnixNano())
}

// NewResponderWithSeed returns a Responder with a fixed seed; used by
// tests that need stable phrasing.
func NewResponderWithSeed(seed int64) *Responder {
	return &Responder{rng: rand.New(rand.NewSource(seed))}
}

// Respond evaluates the rule chain against input and returns the reply.
// The second return is false when the input is empty after trimming, in
// which case the caller must not dispatch anything.
func (r *Responder) Respond(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	for _, rl := range rules {
		if rl.match(in) {
			return rl.reply(r), true
		}
	}
	return r.pick(fallbackReplies), true
}

// Classify returns the intent class that Respond would use for input,
// without generating a reply. Empty input classifies as "" .
func (r *Responder) Classify(input string) Intent {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return ""
	}
	for _, rl := range rules {
		if rl.match(in) {
			return rl.intent
		}
	}
	return IntentFallback
}

func (r *Responder) pick(set []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return set[r.rng.Intn(len(set))]
}
