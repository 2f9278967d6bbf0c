package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/quillworks/dossier/internal/generative"
	"github.com/quillworks/dossier/internal/types"
)

// checkinExchangeCap bounds the lightweight check-in variant. Check-ins exist
// to be short; the cap overrides everything else.
const checkinExchangeCap = 5

// EmbodiedTurn is one delivered in-character reply.
type EmbodiedTurn struct {
	Reply     string
	NewDetail string
	Closing   bool
}

// EmbodimentController drives a free-form session where the system speaks as
// the character. Corrections and discovered details interrupt ordinary
// turn-taking; calibration notes are flushed to the record only on close.
type EmbodimentController struct {
	gen     Generative
	records CharacterRecords

	character      *types.Character
	mode           string
	chapterContext string

	history           []generative.Message
	exchangeCount     int
	notes             []types.CalibrationNote
	pendingDiscovery  string
	lastAuthorMessage string
	closed            bool
	busy              bool

	nowFunc func() time.Time
}

// NewEmbodimentController creates an embodiment session in voice or check-in
// mode. Check-in mode carries the chapter the author is about to write.
func NewEmbodimentController(character *types.Character, gen Generative, records CharacterRecords, mode, chapterContext string) (*EmbodimentController, error) {
	if character == nil {
		return nil, fmt.Errorf("character cannot be nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("generative service cannot be nil")
	}
	if mode != generative.ModeVoice && mode != generative.ModeCheckin {
		return nil, fmt.Errorf("unknown embodiment mode: %s", mode)
	}

	return &EmbodimentController{
		gen:            gen,
		records:        records,
		character:      character,
		mode:           mode,
		chapterContext: chapterContext,
		nowFunc:        time.Now,
	}, nil
}

// Intro returns the opening framing for the session.
func (c *EmbodimentController) Intro() string {
	if c.mode == generative.ModeCheckin {
		return fmt.Sprintf("%s is here for a quick check-in before you write. A few exchanges, then back to the page.", c.character.Name())
	}
	return fmt.Sprintf("You're in the room with %s now. Talk to them directly — ask anything. If the voice sounds wrong, say so and they'll recalibrate.", c.character.Name())
}

// Mode returns the session variant.
func (c *EmbodimentController) Mode() string {
	return c.mode
}

// PendingDiscovery returns the unconfirmed new detail, or empty.
func (c *EmbodimentController) PendingDiscovery() string {
	return c.pendingDiscovery
}

// Closed reports whether the session has ended.
func (c *EmbodimentController) Closed() bool {
	return c.closed
}

// Send delivers one author message and returns the in-character reply. In
// check-in mode the exchange that reaches the cap gets a closing reply and
// ends the session.
func (c *EmbodimentController) Send(ctx context.Context, message string) (EmbodiedTurn, error) {
	if c.busy {
		return EmbodiedTurn{}, fmt.Errorf("previous exchange has not resolved yet")
	}
	c.busy = true
	defer func() { c.busy = false }()

	if c.closed {
		return EmbodiedTurn{}, fmt.Errorf("session has ended")
	}
	if c.pendingDiscovery != "" {
		return EmbodiedTurn{}, fmt.Errorf("confirm or dismiss the discovered detail first")
	}
	if message == "" {
		return EmbodiedTurn{}, fmt.Errorf("message cannot be empty")
	}

	closing := c.mode == generative.ModeCheckin && c.exchangeCount+1 >= checkinExchangeCap

	reply, err := c.gen.EmbodiedReply(ctx, generative.ReplyRequest{
		CharacterName:  c.character.Name(),
		ProfileSummary: c.character.Summary(),
		Mode:           c.mode,
		ChapterContext: c.chapterContext,
		History:        append([]generative.Message(nil), c.history...),
		LatestMessage:  message,
		IsClosing:      closing,
	})
	if err != nil {
		// Nothing recorded; the author can resend.
		return EmbodiedTurn{}, fmt.Errorf("voice interrupted: %w", err)
	}

	c.history = append(c.history,
		generative.Message{Role: "author", Text: message},
		generative.Message{Role: c.character.Name(), Text: reply.Reply},
	)
	c.exchangeCount++
	c.lastAuthorMessage = message
	if reply.NewDetail != "" {
		c.pendingDiscovery = reply.NewDetail
	}
	if closing {
		c.closed = true
	}

	return EmbodiedTurn{Reply: reply.Reply, NewDetail: reply.NewDetail, Closing: closing}, nil
}

// CorrectVoice records the author's correction as a calibration note and
// re-answers the preceding message with the correction as canon. The note is
// kept even when the regenerated reply fails. Corrections do not count
// against the check-in cap.
func (c *EmbodimentController) CorrectVoice(ctx context.Context, correction string) (EmbodiedTurn, error) {
	if c.busy {
		return EmbodiedTurn{}, fmt.Errorf("previous exchange has not resolved yet")
	}
	c.busy = true
	defer func() { c.busy = false }()

	if c.closed {
		return EmbodiedTurn{}, fmt.Errorf("session has ended")
	}
	if correction == "" {
		return EmbodiedTurn{}, fmt.Errorf("correction cannot be empty")
	}
	if c.lastAuthorMessage == "" {
		return EmbodiedTurn{}, fmt.Errorf("nothing to correct yet")
	}

	c.notes = append(c.notes, types.CalibrationNote{
		Kind:      types.NoteKindVoiceCorrection,
		Text:      correction,
		Timestamp: c.nowFunc(),
	})

	reply, err := c.gen.EmbodiedReply(ctx, generative.ReplyRequest{
		CharacterName:  c.character.Name(),
		ProfileSummary: c.character.Summary(),
		Mode:           c.mode,
		ChapterContext: c.chapterContext,
		History:        append([]generative.Message(nil), c.history...),
		LatestMessage:  correction,
		IsCorrection:   true,
	})
	if err != nil {
		return EmbodiedTurn{}, fmt.Errorf("voice interrupted: %w", err)
	}

	c.history = append(c.history,
		generative.Message{Role: "author", Text: correction},
		generative.Message{Role: c.character.Name(), Text: reply.Reply},
	)
	if reply.NewDetail != "" {
		c.pendingDiscovery = reply.NewDetail
	}

	return EmbodiedTurn{Reply: reply.Reply, NewDetail: reply.NewDetail}, nil
}

// ConfirmDiscovery writes the pending discovered detail to the character
// record. A discovery never reaches the record without this explicit step.
func (c *EmbodimentController) ConfirmDiscovery(ctx context.Context) error {
	if c.pendingDiscovery == "" {
		return fmt.Errorf("no discovery is pending")
	}
	if c.records == nil {
		return fmt.Errorf("character record store is not configured")
	}

	note := types.CalibrationNote{
		Kind:      types.NoteKindDiscovery,
		Text:      c.pendingDiscovery,
		Timestamp: c.nowFunc(),
	}
	if err := c.records.AppendCalibrationNotes(ctx, c.character.ID, []types.CalibrationNote{note}); err != nil {
		return fmt.Errorf("failed to record discovery: %w", err)
	}
	c.pendingDiscovery = ""
	return nil
}

// DismissDiscovery discards the pending discovered detail.
func (c *EmbodimentController) DismissDiscovery() {
	c.pendingDiscovery = ""
}

// Close ends the session and flushes accumulated voice corrections to the
// character record in one batch. Check-in corrections are session-local and
// are discarded.
func (c *EmbodimentController) Close(ctx context.Context) error {
	c.closed = true
	if c.mode != generative.ModeVoice || len(c.notes) == 0 {
		return nil
	}
	if c.records == nil {
		return fmt.Errorf("character record store is not configured")
	}
	if err := c.records.AppendCalibrationNotes(ctx, c.character.ID, c.notes); err != nil {
		return fmt.Errorf("failed to flush calibration notes: %w", err)
	}
	c.notes = nil
	return nil
}
