// Package suggestions holds the canned starter questions offered on an empty chat.
package suggestions

import "math/rand/v2"

// Suggestion is a starter question. Title and Label are shown on the chip;
// Action is the question actually submitted.
type Suggestion struct {
	Title  string
	Label  string
	Action string
}

// DefaultCount is how many suggestions are shown per session
const DefaultCount = 2

var catalog = []Suggestion{
	{
		Title:  "What are my rights?",
		Label:  "as an occupational therapist?",
		Action: "What are the professional rights and responsibilities of an occupational therapist?",
	},
	{
		Title:  "How do I report concerns?",
		Label:  "about a patient's driving?",
		Action: "As an occupational therapist, when should I report a patient's fitness to drive?",
	},
	{
		Title:  "Establishing a private practice",
		Label:  "in Ontario",
		Action: "What are the recommended practices and information for occupational therapists wishing to establish a private practice in Ontario?",
	},
	{
		Title:  "Maintaining professional boundaries",
		Label:  "with clients",
		Action: "How should I maintain professional boundaries with clients to prevent conflicts of interest?",
	},
	{
		Title:  "Providing virtual services",
		Label:  "in occupational therapy",
		Action: "What are the guidelines for providing remote (virtual) occupational therapy services?",
	},
	{
		Title:  "Record keeping standards",
		Label:  "for occupational therapists",
		Action: "What are the standards for record keeping in occupational therapy practice?",
	},
	{
		Title:  "Understanding consent",
		Label:  "in occupational therapy",
		Action: "What are the guidelines for obtaining consent from clients in occupational therapy practice?",
	},
	{
		Title:  "Managing conflicts of interest",
		Label:  "in practice",
		Action: "How should I identify and manage conflicts of interest in my occupational therapy practice?",
	},
}

// All returns a copy of the full catalog
func All() []Suggestion {
	out := make([]Suggestion, len(catalog))
	copy(out, catalog)
	return out
}

// Pick samples n distinct suggestions without replacement.
// A nil rng uses the global source.
func Pick(rng *rand.Rand, n int) []Suggestion {
	if n <= 0 {
		return nil
	}
	if n > len(catalog) {
		n = len(catalog)
	}

	perm := permutation(rng, len(catalog))
	out := make([]Suggestion, n)
	for i := 0; i < n; i++ {
		out[i] = catalog[perm[i]]
	}
	return out
}

func permutation(rng *rand.Rand, n int) []int {
	if rng == nil {
		return rand.Perm(n)
	}
	return rng.Perm(n)
}

// Panel is the per-session suggestion state: two random chips that
// disappear for good once the user sends anything.
type Panel struct {
	items    []Suggestion
	selected int
	hidden   bool
}

// NewPanel draws DefaultCount suggestions
func NewPanel(rng *rand.Rand) *Panel {
	return &Panel{items: Pick(rng, DefaultCount), selected: -1}
}

// Items returns the drawn suggestions, or nil once hidden
func (p *Panel) Items() []Suggestion {
	if p.hidden {
		return nil
	}
	return p.items
}

// Visible reports whether the panel should still be drawn
func (p *Panel) Visible() bool {
	return !p.hidden && len(p.items) > 0
}

// Hide permanently hides the panel
func (p *Panel) Hide() {
	p.hidden = true
	p.selected = -1
}

// Selected returns the highlighted index, or -1
func (p *Panel) Selected() int {
	if p.hidden {
		return -1
	}
	return p.selected
}

// Cycle moves the highlight forward: none -> 0 -> 1 -> ... -> none
func (p *Panel) Cycle() {
	if !p.Visible() {
		return
	}
	p.selected++
	if p.selected >= len(p.items) {
		p.selected = -1
	}
}

// Choose returns the suggestion at index i and hides the panel
func (p *Panel) Choose(i int) (Suggestion, bool) {
	if !p.Visible() || i < 0 || i >= len(p.items) {
		return Suggestion{}, false
	}
	s := p.items[i]
	p.Hide()
	return s, true
}
