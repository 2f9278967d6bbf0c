// Package drift tracks the secondary conversation that happens when the
// author's answers shift focus onto a character other than the interview
// subject. Classification of a drift and the call on when to bridge back are
// made by the generative collaborator; the ledger strictly bookkeeps.
package drift

// Kind is the weight of a drift event.
type Kind string

const (
	// KindSingleMention is a passing reference to another character.
	KindSingleMention Kind = "single_mention"
	// KindSustainedFocus means the author kept coming back to the other character.
	KindSustainedFocus Kind = "sustained_focus"
)

// Event is one recorded drift toward another character.
type Event struct {
	MentionedCharacter string `json:"mentioned_character"`
	Kind               Kind   `json:"kind"`
	Bridged            bool   `json:"bridged"`
}

// State is the current unresolved drift. At most one is active at a time.
type State struct {
	MentionedCharacter string `json:"mentioned_character"`
	Kind               Kind   `json:"kind"`
	BridgeReady        bool   `json:"bridge_ready"`
}

// RelationalNote is a captured perception statement the subject's author made
// about another character. Verbatim-sourced, never author-confirmed fact.
type RelationalNote struct {
	AboutCharacter string `json:"about_character"`
	Observation    string `json:"observation"`
	SourceQuote    string `json:"source_quote"`
}

// Ledger accumulates drift history and relational notes across turns.
// The zero value is ready to use.
type Ledger struct {
	History         []Event          `json:"history"`
	RelationalNotes []RelationalNote `json:"relational_notes"`
	Active          *State           `json:"active,omitempty"`
}

// Record appends a history entry and makes the mention the active drift.
// A later drift always supersedes an earlier unresolved one.
func (l *Ledger) Record(mentioned string, kind Kind, bridgeReady bool) {
	if mentioned == "" {
		return
	}
	l.History = append(l.History, Event{MentionedCharacter: mentioned, Kind: kind})
	l.Active = &State{
		MentionedCharacter: mentioned,
		Kind:               kind,
		BridgeReady:        bridgeReady,
	}
}

// ResolveBridge marks the active drift's history entry bridged and clears the
// active state. No-op when nothing is active.
func (l *Ledger) ResolveBridge() {
	if l.Active == nil {
		return
	}
	for i := len(l.History) - 1; i >= 0; i-- {
		if l.History[i].MentionedCharacter == l.Active.MentionedCharacter && !l.History[i].Bridged {
			l.History[i].Bridged = true
			break
		}
	}
	l.Active = nil
}

// AddNote appends a relational note. Notes are append-only; each capture is a
// distinct observed moment, so duplicates are kept.
func (l *Ledger) AddNote(note RelationalNote) {
	if note.AboutCharacter == "" && note.Observation == "" {
		return
	}
	l.RelationalNotes = append(l.RelationalNotes, note)
}

// CurrentState returns a copy of the active drift, or nil.
func (l *Ledger) CurrentState() *State {
	if l.Active == nil {
		return nil
	}
	state := *l.Active
	return &state
}

// Clone deep-copies the ledger for snapshotting.
func (l *Ledger) Clone() Ledger {
	out := Ledger{}
	if l.History != nil {
		out.History = append([]Event(nil), l.History...)
	}
	if l.RelationalNotes != nil {
		out.RelationalNotes = append([]RelationalNote(nil), l.RelationalNotes...)
	}
	if l.Active != nil {
		state := *l.Active
		out.Active = &state
	}
	return out
}
