// Package prompt assembles the prompts sent to the generative service.
package prompt

import (
	"bytes"
	"fmt"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/types"
)

// Line is one visible turn of an embodiment conversation.
type Line struct {
	Role string
	Text string
}

// InterviewerData contains all inputs for a next-question prompt.
type InterviewerData struct {
	CharacterName           string
	Role                    types.RoleType
	ProfileSummary          string
	Answers                 []types.QA
	ForceHesitationCatch    bool
	ForceContradictionCheck bool
	Drift                   *drift.State
	NextScripted            string
}

// Interviewer renders the system instruction and user payload for a
// next-question request.
func Interviewer(data InterviewerData) (system, user string, err error) {
	if data.CharacterName == "" {
		return "", "", fmt.Errorf("character name is required")
	}
	var buf bytes.Buffer
	if err := interviewerTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to build interviewer prompt: %w", err)
	}
	return interviewerInstruction, buf.String(), nil
}

// SynthesisData contains the full interview handed to profile synthesis.
type SynthesisData struct {
	CharacterName   string
	Role            types.RoleType
	Answers         []types.QA
	RelationalNotes []drift.RelationalNote
}

// Synthesis renders the system instruction and user payload for profile
// synthesis over the complete answer history.
func Synthesis(data SynthesisData) (system, user string, err error) {
	if len(data.Answers) == 0 {
		return "", "", fmt.Errorf("cannot synthesize a profile from zero answers")
	}
	var buf bytes.Buffer
	if err := synthesisTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to build synthesis prompt: %w", err)
	}
	return synthesisInstruction, buf.String(), nil
}

// EmbodimentData contains the context for one in-character reply.
type EmbodimentData struct {
	CharacterName  string
	ProfileSummary string
	ChapterContext string
	History        []Line
	LatestMessage  string
	IsCorrection   bool
	IsClosing      bool
}

// Embodiment renders the system instruction and user payload for an
// in-character reply.
func Embodiment(data EmbodimentData) (system, user string, err error) {
	if data.CharacterName == "" {
		return "", "", fmt.Errorf("character name is required")
	}
	if data.LatestMessage == "" {
		return "", "", fmt.Errorf("latest message is required")
	}
	var buf bytes.Buffer
	if err := embodimentTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to build embodiment prompt: %w", err)
	}
	return embodimentInstruction, buf.String(), nil
}
