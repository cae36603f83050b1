// Package session provides conversation storage backends. The in-memory
// store keeps one bounded Conversation per session id, created lazily on
// first access; persistent backends can implement core.SessionStore with the
// same semantics.
package session
