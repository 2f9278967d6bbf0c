package drift

import "testing"

func TestRecordSupersedesActive(t *testing.T) {
	var ledger Ledger
	ledger.Record("Marcus", KindSingleMention, false)
	ledger.Record("Elena", KindSustainedFocus, true)

	if len(ledger.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(ledger.History))
	}
	state := ledger.CurrentState()
	if state == nil || state.MentionedCharacter != "Elena" || !state.BridgeReady {
		t.Fatalf("unexpected active state: %#v", state)
	}
	// Superseded drift stays in history, unbridged.
	if ledger.History[0].MentionedCharacter != "Marcus" || ledger.History[0].Bridged {
		t.Fatalf("unexpected first entry: %#v", ledger.History[0])
	}
}

func TestResolveBridgeArchivesAndClears(t *testing.T) {
	var ledger Ledger
	ledger.Record("Elena", KindSustainedFocus, true)
	ledger.ResolveBridge()

	if ledger.Active != nil {
		t.Fatal("expected active drift cleared after bridge")
	}
	if !ledger.History[0].Bridged {
		t.Fatal("expected history entry marked bridged")
	}

	// Resolving with nothing active is a no-op.
	ledger.ResolveBridge()
	if len(ledger.History) != 1 {
		t.Fatalf("expected history untouched, got %d entries", len(ledger.History))
	}
}

func TestAddNoteIsAppendOnly(t *testing.T) {
	var ledger Ledger
	note := RelationalNote{
		AboutCharacter: "Marcus",
		Observation:    "She measures herself against his calm.",
		SourceQuote:    "Marcus never raises his voice, and that drives her crazy.",
	}
	ledger.AddNote(note)
	ledger.AddNote(note) // same capture twice is two observed moments

	if len(ledger.RelationalNotes) != 2 {
		t.Fatalf("expected duplicate notes kept, got %d", len(ledger.RelationalNotes))
	}

	ledger.AddNote(RelationalNote{})
	if len(ledger.RelationalNotes) != 2 {
		t.Fatal("expected empty note dropped")
	}
}

func TestCurrentStateReturnsCopy(t *testing.T) {
	var ledger Ledger
	ledger.Record("Elena", KindSingleMention, false)

	state := ledger.CurrentState()
	state.BridgeReady = true
	if ledger.Active.BridgeReady {
		t.Fatal("mutating the returned state must not touch the ledger")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var ledger Ledger
	ledger.Record("Elena", KindSustainedFocus, false)
	ledger.AddNote(RelationalNote{AboutCharacter: "Elena", Observation: "obs", SourceQuote: "quote"})

	clone := ledger.Clone()
	clone.Record("Marcus", KindSingleMention, false)
	clone.RelationalNotes[0].Observation = "changed"

	if len(ledger.History) != 1 {
		t.Fatalf("clone mutation leaked into original history: %d", len(ledger.History))
	}
	if ledger.RelationalNotes[0].Observation != "obs" {
		t.Fatal("clone mutation leaked into original notes")
	}
	if ledger.Active.MentionedCharacter != "Elena" {
		t.Fatal("clone mutation leaked into original active state")
	}
}
