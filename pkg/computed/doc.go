// Package computed implements the Client-Computed Registry from
// : named client-side derivations recomputed when their
// declared dependencies change, plus the useComputed hook facade with
// memoization, expiry, debounced or throttled server sync.
//
// Debounce and throttle are materially different policies — coalesce-
// and-delay versus cap-the-rate — so each is backed by a distinct,
// purpose-built dependency rather than one hand-rolled timer: debounce
// via github.com/bep/debounce (used by Hugo's live-reload pipeline, part
// of this retrieval pack's dependency surface) and throttle via
// golang.org/x/time/rate, matching how the example pack reaches for a
// dedicated library per concern.
package computed
