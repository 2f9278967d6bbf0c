package prompt

import (
	"strings"
	"testing"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/types"
)

func TestInterviewerPromptDirectives(t *testing.T) {
	system, user, err := Interviewer(InterviewerData{
		CharacterName:        "Elena",
		Role:                 types.RolePressure,
		Answers:              []types.QA{{Question: "Who is she?", Answer: "My sister, basically."}},
		ForceHesitationCatch: true,
		NextScripted:         "What does she fear?",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(system, "JSON") {
		t.Fatal("system instruction must demand JSON output")
	}
	if !strings.Contains(user, "trailed off or hedged") {
		t.Fatal("expected hesitation directive in user payload")
	}
	if !strings.Contains(user, "What does she fear?") {
		t.Fatal("expected scripted fallback question in user payload")
	}
	if !strings.Contains(user, "A: My sister, basically.") {
		t.Fatal("expected answer history in user payload")
	}
}

func TestInterviewerPromptBridgeDirective(t *testing.T) {
	_, user, err := Interviewer(InterviewerData{
		CharacterName: "Elena",
		Role:          types.RoleSpecial,
		Drift: &drift.State{
			MentionedCharacter: "Marcus",
			Kind:               drift.KindSustainedFocus,
			BridgeReady:        true,
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(user, "bridge question") || !strings.Contains(user, "Marcus") {
		t.Fatal("expected bridge directive naming the drifted-to character")
	}
}

func TestSynthesisPromptRequiresAnswers(t *testing.T) {
	if _, _, err := Synthesis(SynthesisData{CharacterName: "Elena"}); err == nil {
		t.Fatal("expected error for zero answers")
	}

	_, user, err := Synthesis(SynthesisData{
		CharacterName: "Elena",
		Role:          types.RoleShadow,
		Answers:       []types.QA{{Question: "q", Answer: "a"}},
		RelationalNotes: []drift.RelationalNote{
			{AboutCharacter: "Marcus", Observation: "obs", SourceQuote: "quote"},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(user, "On Marcus: obs") {
		t.Fatal("expected relational notes in synthesis payload")
	}
}

func TestEmbodimentPromptClosing(t *testing.T) {
	_, user, err := Embodiment(EmbodimentData{
		CharacterName:  "Elena",
		ProfileSummary: "WHO THEY ARE: the older sister",
		History:        []Line{{Role: "author", Text: "hey"}, {Role: "Elena", Text: "hey yourself"}},
		LatestMessage:  "What are you thinking right now?",
		IsClosing:      true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(user, "last exchange") {
		t.Fatal("expected closing directive")
	}
	if !strings.Contains(user, "Elena: hey yourself") {
		t.Fatal("expected conversation history")
	}
}
