package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/quillworks/dossier/internal/generative"
	"github.com/quillworks/dossier/internal/questions"
	"github.com/quillworks/dossier/internal/scheduler"
	"github.com/quillworks/dossier/internal/types"
)

// adaptiveStartTurn is the answer count after which adaptive follow-ups take
// over from the fixed script.
const adaptiveStartTurn = 2

// TurnResult is what the controller produced in response to one author answer.
type TurnResult struct {
	// Turns are the transcript entries appended by this turn, in order.
	Turns []Turn
	// AwaitingSynthesis is set when the interview ended and synthesis is next.
	AwaitingSynthesis bool
}

// SessionController drives a structured interview: intro, turn loop,
// synthesis hand-off, completion. One controller per session; turns are
// strictly sequential.
type SessionController struct {
	session   *Session
	character *types.Character
	script    []string

	gen     Generative
	store   SnapshotStore
	records CharacterRecords

	review *Review
	busy   bool
}

// NewSessionController creates a fresh structured interview session.
func NewSessionController(character *types.Character, gen Generative, store SnapshotStore, records CharacterRecords) (*SessionController, error) {
	if character == nil {
		return nil, fmt.Errorf("character cannot be nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("generative service cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("snapshot store cannot be nil")
	}

	session := &Session{
		ID:            uuid.NewString(),
		CharacterID:   character.ID,
		CharacterName: character.Name(),
		Role:          character.Role,
		Mode:          ModeStructured,
		Status:        StatusIntro,
	}
	session.appendTurn(SpeakerInterviewer, questions.IntroFraming(character.Name()), TurnSystemNote)

	return &SessionController{
		session:   session,
		character: character,
		script:    questions.ForRole(character.Role),
		gen:       gen,
		store:     store,
		records:   records,
	}, nil
}

// ResumeSessionController restores a session verbatim from a stored snapshot.
// An abandoned session reopens as active; a complete one is not resumable.
func ResumeSessionController(snapshot []byte, character *types.Character, gen Generative, store SnapshotStore, records CharacterRecords) (*SessionController, error) {
	if character == nil {
		return nil, fmt.Errorf("character cannot be nil")
	}
	session, err := DecodeSession(snapshot)
	if err != nil {
		return nil, err
	}
	if session.CharacterID != character.ID {
		return nil, fmt.Errorf("snapshot belongs to character %d, not %d", session.CharacterID, character.ID)
	}
	if !session.Resumable() {
		return nil, fmt.Errorf("session is not resumable")
	}
	if session.Status == StatusAbandoned || session.Status == StatusIntro {
		session.Status = StatusActive
	}
	session.CharacterName = character.Name()

	return &SessionController{
		session:   session,
		character: character,
		script:    questions.ForRole(character.Role),
		gen:       gen,
		store:     store,
		records:   records,
	}, nil
}

// Intro returns the opening framing shown before the interview starts.
func (c *SessionController) Intro() string {
	return c.session.Transcript[0].Text
}

// Status returns the session's lifecycle state.
func (c *SessionController) Status() Status {
	return c.session.Status
}

// Pending returns the question awaiting an answer, or empty between states.
func (c *SessionController) Pending() string {
	return c.session.PendingQuestion
}

// Transcript returns the full ordered transcript.
func (c *SessionController) Transcript() []Turn {
	return append([]Turn(nil), c.session.Transcript...)
}

// Review returns the synthesized profile held for acceptance, or nil.
func (c *SessionController) Review() *Review {
	return c.review
}

// Start moves the session out of intro and asks the first scripted question.
func (c *SessionController) Start() (string, error) {
	if c.session.Status != StatusIntro {
		return "", fmt.Errorf("session already started")
	}
	c.session.Status = StatusActive
	question := c.script[0]
	c.session.ScriptIndex = 1
	c.askQuestion(question)
	c.persist()
	return question, nil
}

// Submit records one author answer and decides what happens next. It must not
// be called again until the previous call returns.
func (c *SessionController) Submit(ctx context.Context, answer string) (*TurnResult, error) {
	if c.busy {
		return nil, fmt.Errorf("previous turn has not resolved yet")
	}
	c.busy = true
	defer func() { c.busy = false }()

	if c.session.Status != StatusActive {
		return nil, fmt.Errorf("session is not active")
	}
	if c.session.PendingQuestion == "" {
		return nil, fmt.Errorf("no question is awaiting an answer")
	}
	if answer == "" {
		return nil, fmt.Errorf("answer cannot be empty")
	}

	c.session.appendTurn(SpeakerAuthor, answer, TurnDialogue)
	c.session.Answers = append(c.session.Answers, types.QA{
		Question: c.session.PendingQuestion,
		Answer:   answer,
	})
	c.session.TurnIndex++
	c.session.PendingQuestion = ""
	c.persist()

	result, err := c.enactNext(ctx, answer)
	c.persist()
	return result, err
}

// RetryPrompt re-runs the decision for the last recorded answer. Used when
// the previous prompt attempt failed, or after resuming a session that was
// closed mid-wait.
func (c *SessionController) RetryPrompt(ctx context.Context) (*TurnResult, error) {
	if c.busy {
		return nil, fmt.Errorf("previous turn has not resolved yet")
	}
	c.busy = true
	defer func() { c.busy = false }()

	if c.session.Status != StatusActive {
		return nil, fmt.Errorf("session is not active")
	}
	if c.session.PendingQuestion != "" {
		return nil, fmt.Errorf("a question is already pending")
	}
	if len(c.session.Answers) == 0 {
		return nil, fmt.Errorf("no answer to follow up on")
	}

	result, err := c.enactNext(ctx, c.session.Answers[len(c.session.Answers)-1].Answer)
	c.persist()
	return result, err
}

// enactNext consults the scheduler and enacts its decision. Probe flags flip
// and the audit turn is stamped here, at enact time, never inside the ladder.
func (c *SessionController) enactNext(ctx context.Context, latestAnswer string) (*TurnResult, error) {
	mark := len(c.session.Transcript)
	result := &TurnResult{}

	action := scheduler.Next(scheduler.Input{
		TurnIndex:                  c.session.TurnIndex,
		LatestAnswer:               latestAnswer,
		CharacterName:              c.session.CharacterName,
		Role:                       c.session.Role,
		Flags:                      c.session.ProbeFlags,
		LastContradictionAuditTurn: c.session.LastContradictionAuditTurn,
		ScriptExhausted:            c.session.ScriptIndex >= len(c.script),
	})

	var err error
	switch action.Kind {
	case scheduler.ActionAskSpecialProbe:
		c.flipProbeFlag(action.Probe)
		c.askQuestion(action.Text)

	case scheduler.ActionRequestContradictionAudit:
		// Stamp before the call so a failed audit never re-fires on this turn.
		c.session.LastContradictionAuditTurn = c.session.TurnIndex
		if reqErr := c.requestQuestion(ctx, false, true); reqErr != nil {
			err = c.fallbackToScript(reqErr)
		}

	case scheduler.ActionRequestAdaptiveFollowup:
		hesitating := action.Reason == scheduler.FollowupHesitation
		if !hesitating && c.session.TurnIndex < adaptiveStartTurn {
			// Adaptive follow-ups have not started yet; stay on the script.
			err = c.fallbackToScript(nil)
			break
		}
		if reqErr := c.requestQuestion(ctx, hesitating, false); reqErr != nil {
			err = c.fallbackToScript(reqErr)
			break
		}
		if !hesitating {
			// An ordinary follow-up consumes the scripted slot it replaced.
			c.advanceScript()
		}

	case scheduler.ActionTerminate:
		c.session.Status = StatusAwaitingSynthesis
		c.session.appendTurn(SpeakerInterviewer,
			"That's everything I need. Give me a moment to pull this together.",
			TurnSystemNote)
		result.AwaitingSynthesis = true

	case scheduler.ActionAskFixedQuestion:
		c.askQuestion(action.Text)
		c.advanceScript()
	}

	result.Turns = append([]Turn(nil), c.session.Transcript[mark:]...)
	return result, err
}

// requestQuestion asks the collaborator for the next question and applies
// everything it reported. On error the session is unchanged.
func (c *SessionController) requestQuestion(ctx context.Context, forceHesitationCatch, forceContradictionCheck bool) error {
	reply, err := c.gen.NextQuestion(ctx, generative.QuestionRequest{
		CharacterName:           c.session.CharacterName,
		Role:                    c.session.Role,
		ProfileSummary:          c.character.Summary(),
		AnswersSoFar:            append([]types.QA(nil), c.session.Answers...),
		NextScripted:            c.peekScripted(),
		ForceHesitationCatch:    forceHesitationCatch,
		ForceContradictionCheck: forceContradictionCheck,
		Drift:                   c.session.Drift.CurrentState(),
	})
	if err != nil {
		return err
	}

	if reply.BridgeIssued {
		c.session.Drift.ResolveBridge()
	}
	if reply.Drift != nil {
		c.session.Drift.Record(reply.Drift.Character, reply.Drift.Kind, reply.Drift.BridgeReady)
	}
	if reply.RelationalNote != nil {
		c.session.Drift.AddNote(*reply.RelationalNote)
	}
	if reply.Contradiction != nil {
		c.session.appendTurn(SpeakerInterviewer, reply.Contradiction.Description, TurnContradictionFlag)
	}
	if reply.ThreadHint != "" {
		c.session.appendTurn(SpeakerInterviewer, reply.ThreadHint, TurnThreadHint)
	}
	c.askQuestion(reply.Question)
	return nil
}

// fallbackToScript asks the next fixed scripted question when the
// collaborator fails. With the script exhausted the error surfaces to the
// author as a retry affordance.
func (c *SessionController) fallbackToScript(cause error) error {
	action, ok := scheduler.Fallback(c.peekScripted())
	if !ok {
		if cause == nil {
			return fmt.Errorf("no scripted question remains")
		}
		return fmt.Errorf("could not produce the next question: %w", cause)
	}
	if cause != nil {
		slog.Warn("falling back to scripted question", "session_id", c.session.ID, "error", cause.Error())
	}
	c.askQuestion(action.Text)
	c.advanceScript()
	return nil
}

// Synthesize sends the full answer history for profile synthesis. On failure
// the session stays at the same turn with nothing lost, and synthesis can be
// retried.
func (c *SessionController) Synthesize(ctx context.Context) (*Review, error) {
	if c.busy {
		return nil, fmt.Errorf("previous turn has not resolved yet")
	}
	c.busy = true
	defer func() { c.busy = false }()

	if c.session.Status != StatusAwaitingSynthesis {
		return nil, fmt.Errorf("session is not awaiting synthesis")
	}

	reply, err := c.gen.SynthesizeProfile(ctx, generative.SynthesisRequest{
		CharacterName:   c.session.CharacterName,
		Role:            c.session.Role,
		Answers:         append([]types.QA(nil), c.session.Answers...),
		RelationalNotes: c.session.Drift.Clone().RelationalNotes,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	c.review = &Review{
		Profile:        reply.Profile,
		Contradictions: reply.Contradictions,
		Threads:        reply.Threads,
	}
	return c.review, nil
}

// AcceptProfile writes the reviewed profile to the character record,
// completes the session, and clears its persisted snapshot.
func (c *SessionController) AcceptProfile(ctx context.Context) error {
	if c.review == nil {
		return fmt.Errorf("no synthesized profile to accept")
	}
	if c.records == nil {
		return fmt.Errorf("character record store is not configured")
	}
	if err := c.records.AcceptProfile(ctx, c.session.CharacterID, c.review.Profile); err != nil {
		return fmt.Errorf("failed to write accepted profile: %w", err)
	}
	if notes := c.session.Drift.RelationalNotes; len(notes) > 0 {
		if err := c.records.ArchiveRelationalNotes(ctx, c.session.CharacterID, notes); err != nil {
			// The profile is already in; the notes also live inside it via
			// synthesis, so this is not worth failing the acceptance over.
			slog.Error("failed to archive relational notes", "session_id", c.session.ID, "error", err.Error())
		}
	}

	c.session.Status = StatusComplete
	if err := c.store.Clear(ctx, c.snapshotKey()); err != nil {
		slog.Error("failed to clear session snapshot", "session_id", c.session.ID, "error", err.Error())
	}
	return nil
}

// Close abandons the session. The snapshot is kept, so the session stays
// resumable; any in-flight collaborator result is discarded by the caller.
func (c *SessionController) Close() {
	if c.session.Status == StatusComplete {
		return
	}
	c.session.Status = StatusAbandoned
	c.persist()
}

func (c *SessionController) askQuestion(text string) {
	c.session.appendTurn(SpeakerInterviewer, text, TurnDialogue)
	c.session.PendingQuestion = text
}

func (c *SessionController) peekScripted() string {
	if c.session.ScriptIndex < len(c.script) {
		return c.script[c.session.ScriptIndex]
	}
	return ""
}

func (c *SessionController) advanceScript() {
	if c.session.ScriptIndex < len(c.script) {
		c.session.ScriptIndex++
	}
}

func (c *SessionController) flipProbeFlag(kind questions.ProbeKind) {
	switch kind {
	case questions.ProbeSensory:
		c.session.ProbeFlags.SensoryAsked = true
	case questions.ProbePrivateLife:
		c.session.ProbeFlags.PrivateLifeAsked = true
	case questions.ProbeUnspoken:
		c.session.ProbeFlags.UnspokenAsked = true
	case questions.ProbeClosing:
		c.session.ProbeFlags.ClosingAsked = true
	}
}

func (c *SessionController) snapshotKey() string {
	return strconv.Itoa(c.session.CharacterID)
}

// persist enqueues a best-effort snapshot write. Failures are logged and
// the next turn's write re-attempts a full snapshot.
func (c *SessionController) persist() {
	data, err := c.session.Encode()
	if err != nil {
		slog.Error("failed to encode session snapshot", "session_id", c.session.ID, "error", err.Error())
		return
	}
	c.store.Enqueue(c.snapshotKey(), data)
}
