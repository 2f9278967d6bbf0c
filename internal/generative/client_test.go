package generative

import (
	"context"
	"fmt"
	"testing"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/types"
)

type fakeModel struct {
	response string
	err      error
	lastUser string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestNextQuestionParsesFullPayload(t *testing.T) {
	model := &fakeModel{response: "```json\n" + `{
		"question": "What does Marcus owe you?",
		"thread_hint": "An unpaid debt between siblings",
		"drift_detected": {"character": "Marcus", "kind": "sustained_focus", "bridge_ready": true},
		"relational_note": {"about_character": "Marcus", "observation": "She resents him", "source_quote": "he always takes"},
		"new_characters_detected": ["Marcus"],
		"bridge_issued": true
	}` + "\n```"}
	client := NewClient(model)

	result, err := client.NextQuestion(context.Background(), QuestionRequest{
		CharacterName: "Elena",
		Role:          types.RolePressure,
		AnswersSoFar:  []types.QA{{Question: "q", Answer: "a"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Question != "What does Marcus owe you?" {
		t.Fatalf("unexpected question: %q", result.Question)
	}
	if result.Drift == nil || result.Drift.Kind != drift.KindSustainedFocus || !result.Drift.BridgeReady {
		t.Fatalf("unexpected drift signal: %+v", result.Drift)
	}
	if result.RelationalNote == nil || result.RelationalNote.AboutCharacter != "Marcus" {
		t.Fatalf("unexpected relational note: %+v", result.RelationalNote)
	}
	if !result.BridgeIssued {
		t.Fatal("expected bridge_issued to carry through")
	}
}

func TestNextQuestionRejectsMissingQuestion(t *testing.T) {
	client := NewClient(&fakeModel{response: `{"thread_hint": "no question here"}`})
	if _, err := client.NextQuestion(context.Background(), QuestionRequest{CharacterName: "Elena"}); err == nil {
		t.Fatal("expected error for payload without a question")
	}
}

func TestNextQuestionPropagatesModelError(t *testing.T) {
	client := NewClient(&fakeModel{err: fmt.Errorf("timeout")})
	if _, err := client.NextQuestion(context.Background(), QuestionRequest{CharacterName: "Elena"}); err == nil {
		t.Fatal("expected error when the model fails")
	}
}

func TestSynthesizeProfile(t *testing.T) {
	model := &fakeModel{response: `{
		"profile": {
			"description": "The older sister who kept the family fed.",
			"core_belief": "Nobody stays unless you make yourself useful.",
			"personality": "Brisk, watchful, allergic to gratitude."
		},
		"contradictions": [
			{"description": "Claims she forgave him", "first_quote": "I let it go", "second_quote": "I still count what he owes"}
		],
		"threads": [
			{"title": "The unpaid debt", "description": "Money Marcus borrowed and never mentioned again", "chapter_hint": "Confrontation at the funeral"}
		]
	}`}
	client := NewClient(model)

	result, err := client.SynthesizeProfile(context.Background(), SynthesisRequest{
		CharacterName: "Elena",
		Role:          types.RolePressure,
		Answers:       []types.QA{{Question: "q", Answer: "a"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Profile.CoreBelief == "" {
		t.Fatal("expected core belief in synthesized profile")
	}
	if len(result.Contradictions) != 1 || len(result.Threads) != 1 {
		t.Fatalf("unexpected review material: %+v", result)
	}
}

func TestSynthesizeProfileRejectsEmptyProfile(t *testing.T) {
	client := NewClient(&fakeModel{response: `{"profile": {}}`})
	_, err := client.SynthesizeProfile(context.Background(), SynthesisRequest{
		CharacterName: "Elena",
		Answers:       []types.QA{{Question: "q", Answer: "a"}},
	})
	if err == nil {
		t.Fatal("expected error for an empty profile")
	}
}

func TestEmbodiedReply(t *testing.T) {
	model := &fakeModel{response: `{"reply": "I keep the receipts in a shoebox.", "new_detail_detected": "Keeps receipts in a shoebox"}`}
	client := NewClient(model)

	result, err := client.EmbodiedReply(context.Background(), ReplyRequest{
		CharacterName: "Elena",
		Mode:          ModeVoice,
		History:       []Message{{Role: "author", Text: "Where do you keep it all?"}},
		LatestMessage: "Where do you keep it all?",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.NewDetail != "Keeps receipts in a shoebox" {
		t.Fatalf("unexpected new detail: %q", result.NewDetail)
	}
}

func TestExtractJSONTrimsFences(t *testing.T) {
	raw := "Sure, here you go:\n```json\n{\"reply\": \"hi\"}\n```\nLet me know."
	if got := extractJSON(raw); got != `{"reply": "hi"}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}
