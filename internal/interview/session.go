// Package interview is the session orchestrator: the turn-taking state
// machine for structured character interviews and free-form embodiment
// sessions, with crash-safe resumability.
package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/generative"
	"github.com/quillworks/dossier/internal/scheduler"
	"github.com/quillworks/dossier/internal/types"
)

// Session modes.
const (
	ModeStructured = "structured"
	ModeEmbodiment = "embodiment"
)

// Status is the session's lifecycle state.
type Status string

const (
	StatusIntro             Status = "intro"
	StatusActive            Status = "active"
	StatusAwaitingSynthesis Status = "awaiting_synthesis"
	StatusComplete          Status = "complete"
	StatusAbandoned         Status = "abandoned"
)

// Speakers.
const (
	SpeakerInterviewer = "interviewer"
	SpeakerAuthor      = "author"
)

// Turn kinds. System notes, thread hints, and contradiction flags are tagged
// distinctly from ordinary dialogue.
const (
	TurnDialogue          = "dialogue"
	TurnSystemNote        = "system_note"
	TurnThreadHint        = "thread_hint"
	TurnContradictionFlag = "contradiction_flag"
)

// Turn is one entry of the session transcript.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Kind    string `json:"kind"`
}

// Session is the authoritative in-memory record of one interview. It is
// mutated only by the controller in response to author turns.
type Session struct {
	ID                         string          `json:"id"`
	CharacterID                int             `json:"character_id"`
	CharacterName              string          `json:"character_name"`
	Role                       types.RoleType  `json:"role"`
	Mode                       string          `json:"mode"`
	Status                     Status          `json:"status"`
	TurnIndex                  int             `json:"turn_index"`
	ScriptIndex                int             `json:"script_index"`
	PendingQuestion            string          `json:"pending_question"`
	Transcript                 []Turn          `json:"transcript"`
	Answers                    []types.QA      `json:"answers"`
	ProbeFlags                 scheduler.Flags `json:"probe_flags"`
	LastContradictionAuditTurn int             `json:"last_contradiction_audit_turn"`
	Drift                      drift.Ledger    `json:"drift"`
}

// Encode serializes the session for the snapshot store. All snapshots go
// through this one marshal path so load-then-save is byte-identical.
func (s *Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

// DecodeSession reconstructs a session from a stored snapshot.
func DecodeSession(data []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	if session.CharacterID == 0 {
		return nil, fmt.Errorf("session snapshot has no character id")
	}
	return &session, nil
}

// Resumable reports whether a stored session should be offered for resume.
func (s *Session) Resumable() bool {
	return s.Status != StatusComplete && s.TurnIndex > 0
}

func (s *Session) appendTurn(speaker, text, kind string) {
	s.Transcript = append(s.Transcript, Turn{Speaker: speaker, Text: text, Kind: kind})
}

// Generative is the opaque text service the orchestrator collaborates with.
type Generative interface {
	NextQuestion(ctx context.Context, req generative.QuestionRequest) (generative.QuestionResult, error)
	SynthesizeProfile(ctx context.Context, req generative.SynthesisRequest) (generative.SynthesisResult, error)
	EmbodiedReply(ctx context.Context, req generative.ReplyRequest) (generative.ReplyResult, error)
}

// SnapshotStore persists session snapshots keyed by character. Enqueue is
// fire-and-forget; it must never block the turn loop.
type SnapshotStore interface {
	Enqueue(characterID string, snapshot []byte)
	Load(ctx context.Context, characterID string) ([]byte, error)
	Clear(ctx context.Context, characterID string) error
}

// CharacterRecords is the character record store. All writes are append-only
// from the orchestrator's perspective.
type CharacterRecords interface {
	GetByID(ctx context.Context, id int) (*types.Character, error)
	AcceptProfile(ctx context.Context, id int, profile types.Profile) error
	AppendCalibrationNotes(ctx context.Context, id int, notes []types.CalibrationNote) error
	ArchiveRelationalNotes(ctx context.Context, characterID int, notes []drift.RelationalNote) error
}

// Review is a synthesized profile held for the author's explicit acceptance.
// Nothing in it touches the character record until accepted.
type Review struct {
	Profile        types.Profile
	Contradictions []types.Contradiction
	Threads        []types.PlotThread
}
