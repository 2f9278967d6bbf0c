// Package scheduler decides what the interviewer does after each author
// answer. The decision logic is a strict priority ladder: a literal ordered
// list of predicate/action pairs evaluated top to bottom, first match wins,
// so the priority contract is enforced by structure, not branch ordering.
package scheduler

import (
	"github.com/quillworks/dossier/internal/hesitation"
	"github.com/quillworks/dossier/internal/questions"
	"github.com/quillworks/dossier/internal/types"
)

// ActionKind tags the scheduler's decision.
type ActionKind string

const (
	// ActionAskFixedQuestion asks the next question of the fixed script.
	ActionAskFixedQuestion ActionKind = "ask_fixed_question"
	// ActionAskSpecialProbe injects a one-shot probe outside the script.
	ActionAskSpecialProbe ActionKind = "ask_special_probe"
	// ActionRequestContradictionAudit asks the collaborator to audit the full
	// answer history for contradictions.
	ActionRequestContradictionAudit ActionKind = "request_contradiction_audit"
	// ActionRequestAdaptiveFollowup asks the collaborator for the next question.
	ActionRequestAdaptiveFollowup ActionKind = "request_adaptive_followup"
	// ActionTerminate ends the interview and hands off to synthesis.
	ActionTerminate ActionKind = "terminate"
)

// FollowupReason distinguishes why an adaptive follow-up was requested.
type FollowupReason string

const (
	// FollowupHesitation chases an unfinished thought.
	FollowupHesitation FollowupReason = "hesitation"
	// FollowupContinuation is ordinary forward motion through the interview.
	FollowupContinuation FollowupReason = "continuation"
)

// Action is the scheduler's decision for one turn.
type Action struct {
	Kind   ActionKind
	Probe  questions.ProbeKind
	Text   string
	Reason FollowupReason
}

// Flags records which one-shot probes have fired. Each may flip to true at
// most once per session.
type Flags struct {
	SensoryAsked     bool `json:"sensory_asked"`
	PrivateLifeAsked bool `json:"private_life_asked"`
	UnspokenAsked    bool `json:"unspoken_asked"`
	ClosingAsked     bool `json:"closing_asked"`
}

// Input is the read-only view of session state the ladder evaluates.
type Input struct {
	TurnIndex                  int
	LatestAnswer               string
	CharacterName              string
	Role                       types.RoleType
	Flags                      Flags
	LastContradictionAuditTurn int
	ScriptExhausted            bool

	hedging bool // computed once before the ladder runs
}

type rule struct {
	name  string
	match func(in *Input) bool
	apply func(in *Input) Action
}

// ladder is the priority order. Probes are dropped, not deferred: each rule's
// predicate is re-evaluated from the top on every turn, and a probe whose turn
// was consumed by a higher rung never retries. The closing probe is the one
// rung that cannot be starved: its predicate is script exhaustion, not a turn
// index.
var ladder = []rule{
	{
		name: "hesitation-catch",
		match: func(in *Input) bool {
			return in.hedging
		},
		apply: func(in *Input) Action {
			return Action{Kind: ActionRequestAdaptiveFollowup, Reason: FollowupHesitation}
		},
	},
	{
		name: "sensory-anchor-probe",
		match: func(in *Input) bool {
			return in.TurnIndex == 1 && !in.Flags.SensoryAsked
		},
		apply: func(in *Input) Action {
			return probeAction(questions.ProbeSensory, in.CharacterName)
		},
	},
	{
		name: "contradiction-audit",
		match: func(in *Input) bool {
			return in.TurnIndex >= 3 && in.TurnIndex%3 == 0 && in.TurnIndex != in.LastContradictionAuditTurn
		},
		apply: func(in *Input) Action {
			return Action{Kind: ActionRequestContradictionAudit}
		},
	},
	{
		name: "private-life-probe",
		match: func(in *Input) bool {
			return in.TurnIndex == 3 && !in.Flags.PrivateLifeAsked
		},
		apply: func(in *Input) Action {
			return probeAction(questions.ProbePrivateLife, in.CharacterName)
		},
	},
	{
		name: "unspoken-reaction-probe",
		match: func(in *Input) bool {
			return in.TurnIndex == 4 && questions.RoleWarrantsUnspokenProbe(in.Role) && !in.Flags.UnspokenAsked
		},
		apply: func(in *Input) Action {
			return probeAction(questions.ProbeUnspoken, in.CharacterName)
		},
	},
	{
		name: "closing-probe",
		match: func(in *Input) bool {
			return in.ScriptExhausted && !in.Flags.ClosingAsked
		},
		apply: func(in *Input) Action {
			return probeAction(questions.ProbeClosing, in.CharacterName)
		},
	},
	{
		name: "synthesis-trigger",
		match: func(in *Input) bool {
			return in.ScriptExhausted && in.Flags.ClosingAsked
		},
		apply: func(in *Input) Action {
			return Action{Kind: ActionTerminate}
		},
	},
	{
		name: "adaptive-continuation",
		match: func(in *Input) bool {
			return true
		},
		apply: func(in *Input) Action {
			return Action{Kind: ActionRequestAdaptiveFollowup, Reason: FollowupContinuation}
		},
	},
}

// Next evaluates the ladder for one turn. It never mutates session state; the
// caller flips probe flags and stamps the audit turn when it enacts the action.
func Next(in Input) Action {
	in.hedging = hesitation.Classify(in.LatestAnswer).Hedging
	for _, r := range ladder {
		if r.match(&in) {
			return r.apply(&in)
		}
	}
	// Unreachable: the final rung always matches.
	return Action{Kind: ActionRequestAdaptiveFollowup, Reason: FollowupContinuation}
}

// Fallback is the action taken when the generative collaborator fails: the
// next fixed scripted question when one remains.
func Fallback(scripted string) (Action, bool) {
	if scripted == "" {
		return Action{}, false
	}
	return Action{Kind: ActionAskFixedQuestion, Text: scripted}, true
}

func probeAction(kind questions.ProbeKind, characterName string) Action {
	return Action{
		Kind:  ActionAskSpecialProbe,
		Probe: kind,
		Text:  questions.ProbeText(kind, characterName),
	}
}
