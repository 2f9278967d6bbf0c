// Package generative is the request/response contract with the text service
// that writes questions, in-character replies, and synthesized profiles. The
// orchestrator treats the service as opaque: structured JSON in, structured
// JSON out, validated against a schema before anything touches session state.
package generative

import (
	"context"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/types"
)

// Model is the minimal completion surface a provider adapter must offer.
type Model interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// QuestionRequest asks for the next interview question.
type QuestionRequest struct {
	CharacterName           string
	Role                    types.RoleType
	ProfileSummary          string
	AnswersSoFar            []types.QA
	NextScripted            string
	ForceHesitationCatch    bool
	ForceContradictionCheck bool
	Drift                   *drift.State
}

// DriftSignal reports that the latest answer shifted focus to another character.
type DriftSignal struct {
	Character   string
	Kind        drift.Kind
	BridgeReady bool
}

// QuestionResult is the service's answer to a QuestionRequest.
type QuestionResult struct {
	Question       string
	ThreadHint     string
	Drift          *DriftSignal
	RelationalNote *drift.RelationalNote
	Contradiction  *types.Contradiction
	NewCharacters  []string
	BridgeIssued   bool
}

// SynthesisRequest hands the complete interview to profile synthesis.
type SynthesisRequest struct {
	CharacterName   string
	Role            types.RoleType
	Answers         []types.QA
	RelationalNotes []drift.RelationalNote
}

// SynthesisResult is the synthesized profile plus everything flagged for the
// author's review.
type SynthesisResult struct {
	Profile        types.Profile
	Contradictions []types.Contradiction
	Threads        []types.PlotThread
}

// Embodiment modes.
const (
	ModeVoice   = "voice"
	ModeCheckin = "checkin"
)

// Message is one visible turn of an embodiment conversation.
type Message struct {
	Role string
	Text string
}

// ReplyRequest asks for one in-character reply.
type ReplyRequest struct {
	CharacterName  string
	ProfileSummary string
	Mode           string
	ChapterContext string
	History        []Message
	LatestMessage  string
	IsCorrection   bool
	IsClosing      bool
}

// ReplyResult is the in-character reply, with any new concrete detail the
// character introduced that is not yet in the profile.
type ReplyResult struct {
	Reply     string
	NewDetail string
}
