// Package ports defines the core interfaces that form the contract between
// the domain layer and the host environment (UI collaborators and
// observability). These interfaces enable dependency inversion and keep
// the rendering core testable independent of any UI runtime.
package ports

import "github.com/JingYue2000/ChainForge/internal/domain"

// RatingToolbar receives one callback per rendered group so the host UI
// can attach its (lazily loaded) rating controls. The index list refers
// to positions within the post-filter item list, which is how the
// toolbar must address items.
// Implementations must tolerate being called repeatedly with identical
// arguments, since re-rendering is idempotent.
type RatingToolbar interface {
	// Attach is invoked once per ranked group with the response uid, the
	// group's original-index list, the layout flag, and the
	// representative (first-occurring) item.
	Attach(uid string, indices []int, wideFormat bool, representative domain.ResponseItem)
}

// ItemFilter narrows, reorders, or annotates a response item list before
// grouping. The returned list and its new positional indices become the
// basis for all subsequent bookkeeping.
// Implementations must not mutate the input slice.
type ItemFilter interface {
	Filter(items []domain.ResponseItem) []domain.ResponseItem
}

// TextRenderer customizes the display form of a plain-text
// representative. The canonical key and search text are unaffected.
type TextRenderer interface {
	RenderText(text string) string
}

// VariableResolver resolves indirect string handles to their text, used
// for prompt-variable values in group headings. Resolve reports false
// when the handle is unknown, in which case callers fall back to the
// raw handle.
type VariableResolver interface {
	Resolve(handle string) (string, bool)
}
