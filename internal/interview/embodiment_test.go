package interview

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/quillworks/dossier/internal/generative"
	"github.com/quillworks/dossier/internal/types"
)

func newEmbodiment(t *testing.T, gen *fakeGen, records *fakeRecords, mode string) *EmbodimentController {
	t.Helper()
	c, err := NewEmbodimentController(testCharacter(types.RolePressure), gen, records, mode, "Chapter 4: the funeral")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	c.nowFunc = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestSendCarriesHistoryAndContext(t *testing.T) {
	gen := &fakeGen{}
	c := newEmbodiment(t, gen, &fakeRecords{}, generative.ModeCheckin)
	ctx := context.Background()

	if _, err := c.Send(ctx, "How are you feeling about the funeral?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := c.Send(ctx, "What will you say to Marcus there?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second := gen.replyReqs[1]
	if second.ChapterContext != "Chapter 4: the funeral" {
		t.Fatalf("expected chapter context, got %q", second.ChapterContext)
	}
	if len(second.History) != 2 {
		t.Fatalf("expected prior exchange in history, got %d entries", len(second.History))
	}
	if second.History[0].Role != "author" || second.History[1].Role != "Elena" {
		t.Fatalf("unexpected history roles: %+v", second.History)
	}
}

func TestCheckinCapsAtFiveExchanges(t *testing.T) {
	gen := &fakeGen{}
	c := newEmbodiment(t, gen, &fakeRecords{}, generative.ModeCheckin)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		turn, err := c.Send(ctx, fmt.Sprintf("Exchange %d", i+1))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if turn.Closing {
			t.Fatalf("exchange %d must not close the session", i+1)
		}
	}

	turn, err := c.Send(ctx, "Exchange 5")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !turn.Closing {
		t.Fatal("fifth exchange must be the closing one")
	}
	if !gen.replyReqs[4].IsClosing {
		t.Fatal("closing exchange must be flagged to the collaborator")
	}
	if _, err := c.Send(ctx, "Exchange 6"); err == nil {
		t.Fatal("expected error after the cap")
	}
}

func TestVoiceModeIsUnbounded(t *testing.T) {
	gen := &fakeGen{}
	c := newEmbodiment(t, gen, &fakeRecords{}, generative.ModeVoice)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		turn, err := c.Send(ctx, fmt.Sprintf("Exchange %d", i+1))
		if err != nil {
			t.Fatalf("exchange %d: expected no error, got %v", i+1, err)
		}
		if turn.Closing {
			t.Fatal("voice mode has no closing cap")
		}
	}
}

func TestVoiceInterruptedLeavesSessionUnchanged(t *testing.T) {
	gen := &fakeGen{replyErr: fmt.Errorf("timeout")}
	c := newEmbodiment(t, gen, &fakeRecords{}, generative.ModeVoice)
	ctx := context.Background()

	if _, err := c.Send(ctx, "Can you hear me?"); err == nil {
		t.Fatal("expected voice interrupted error")
	}
	if len(c.history) != 0 || c.exchangeCount != 0 {
		t.Fatal("failed exchange must not be recorded")
	}

	// Resending works once the collaborator recovers.
	gen.replyErr = nil
	if _, err := c.Send(ctx, "Can you hear me?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCorrectionRecordsNoteAndReanswers(t *testing.T) {
	gen := &fakeGen{}
	records := &fakeRecords{}
	c := newEmbodiment(t, gen, records, generative.ModeVoice)
	ctx := context.Background()

	if _, err := c.Send(ctx, "What do you think of Marcus?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := c.CorrectVoice(ctx, "She would never be that forgiving about him."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(c.notes) != 1 || c.notes[0].Kind != types.NoteKindVoiceCorrection {
		t.Fatalf("expected one correction note, got %+v", c.notes)
	}
	if c.notes[0].Timestamp.IsZero() {
		t.Fatal("expected the note timestamped")
	}
	req := gen.replyReqs[1]
	if !req.IsCorrection || req.LatestMessage != "She would never be that forgiving about him." {
		t.Fatalf("expected correction request, got %+v", req)
	}
	if len(req.History) != 2 {
		t.Fatal("correction must carry the exchange being corrected")
	}

	// Nothing reaches the record mid-session.
	if len(records.noteBatches) != 0 {
		t.Fatal("corrections must not be written before close")
	}
}

func TestCorrectionNoteSurvivesFailedReanswer(t *testing.T) {
	gen := &fakeGen{}
	c := newEmbodiment(t, gen, &fakeRecords{}, generative.ModeVoice)
	ctx := context.Background()

	if _, err := c.Send(ctx, "What do you think of Marcus?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	gen.replyErr = fmt.Errorf("timeout")
	if _, err := c.CorrectVoice(ctx, "Too soft. She'd bite back."); err == nil {
		t.Fatal("expected voice interrupted error")
	}
	if len(c.notes) != 1 {
		t.Fatal("the correction note must be kept even when the re-answer fails")
	}
}

func TestDiscoverySuspendsTurnTakingUntilResolved(t *testing.T) {
	gen := &fakeGen{replyQueue: []generative.ReplyResult{
		{Reply: "I keep the receipts in a shoebox.", NewDetail: "Keeps receipts in a shoebox"},
	}}
	records := &fakeRecords{}
	c := newEmbodiment(t, gen, records, generative.ModeVoice)
	ctx := context.Background()

	turn, err := c.Send(ctx, "Where do you keep it all?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if turn.NewDetail == "" || c.PendingDiscovery() == "" {
		t.Fatal("expected a pending discovery")
	}

	if _, err := c.Send(ctx, "Anything else?"); err == nil {
		t.Fatal("ordinary turn-taking must suspend while a discovery is pending")
	}

	if err := c.ConfirmDiscovery(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// A confirmed discovery is written immediately, on its own.
	if len(records.noteBatches) != 1 || len(records.noteBatches[0]) != 1 {
		t.Fatalf("expected one immediate discovery write, got %+v", records.noteBatches)
	}
	if records.noteBatches[0][0].Kind != types.NoteKindDiscovery {
		t.Fatal("expected a discovery note")
	}
	if c.PendingDiscovery() != "" {
		t.Fatal("expected pending discovery cleared")
	}

	if _, err := c.Send(ctx, "Anything else?"); err != nil {
		t.Fatalf("expected turn-taking to resume, got %v", err)
	}
}

func TestDismissDiscoveryDiscards(t *testing.T) {
	gen := &fakeGen{replyQueue: []generative.ReplyResult{
		{Reply: "There's a letter I never sent.", NewDetail: "Has an unsent letter"},
	}}
	records := &fakeRecords{}
	c := newEmbodiment(t, gen, records, generative.ModeVoice)
	ctx := context.Background()

	if _, err := c.Send(ctx, "What are you hiding?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	c.DismissDiscovery()
	if c.PendingDiscovery() != "" {
		t.Fatal("expected pending discovery cleared")
	}
	if len(records.noteBatches) != 0 {
		t.Fatal("a dismissed discovery must never reach the record")
	}
}

func TestCloseFlushesVoiceNotesInOneBatch(t *testing.T) {
	gen := &fakeGen{}
	records := &fakeRecords{}
	c := newEmbodiment(t, gen, records, generative.ModeVoice)
	ctx := context.Background()

	if _, err := c.Send(ctx, "Talk to me."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := c.CorrectVoice(ctx, "Sharper."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := c.CorrectVoice(ctx, "She never apologizes first."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := c.Close(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records.noteBatches) != 1 {
		t.Fatalf("expected one batched flush, got %d writes", len(records.noteBatches))
	}
	if len(records.noteBatches[0]) != 2 {
		t.Fatalf("expected both corrections in the batch, got %d", len(records.noteBatches[0]))
	}
	if !c.Closed() {
		t.Fatal("expected the session closed")
	}
}

func TestCheckinCloseDiscardsNotes(t *testing.T) {
	gen := &fakeGen{}
	records := &fakeRecords{}
	c := newEmbodiment(t, gen, records, generative.ModeCheckin)
	ctx := context.Background()

	if _, err := c.Send(ctx, "Quick question before I write."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := c.CorrectVoice(ctx, "Less chipper."); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records.noteBatches) != 0 {
		t.Fatal("check-in corrections are session-local and must not be written")
	}
}
