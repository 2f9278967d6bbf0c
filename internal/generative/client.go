package generative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/prompt"
	"github.com/quillworks/dossier/internal/types"
)

// Client turns typed requests into prompts, calls the underlying model, and
// validates what comes back.
type Client struct {
	model Model
}

func NewClient(model Model) *Client {
	return &Client{model: model}
}

// NextQuestion asks the service for the next interview question.
func (c *Client) NextQuestion(ctx context.Context, req QuestionRequest) (QuestionResult, error) {
	system, user, err := prompt.Interviewer(prompt.InterviewerData{
		CharacterName:           req.CharacterName,
		Role:                    req.Role,
		ProfileSummary:          req.ProfileSummary,
		Answers:                 req.AnswersSoFar,
		ForceHesitationCatch:    req.ForceHesitationCatch,
		ForceContradictionCheck: req.ForceContradictionCheck,
		Drift:                   req.Drift,
		NextScripted:            req.NextScripted,
	})
	if err != nil {
		return QuestionResult{}, err
	}

	raw, err := c.model.Complete(ctx, system, user)
	if err != nil {
		slog.Error("next question request failed", "model", c.model.Name(), "error", err.Error())
		return QuestionResult{}, fmt.Errorf("question generation failed: %w", err)
	}

	payload, err := parseQuestionPayload(raw)
	if err != nil {
		slog.Error("next question response rejected", "model", c.model.Name(), "error", err.Error())
		return QuestionResult{}, fmt.Errorf("question generation failed: %w", err)
	}

	result := QuestionResult{
		Question:      payload.Question,
		ThreadHint:    strings.TrimSpace(payload.ThreadHint),
		NewCharacters: payload.NewCharactersDetected,
		BridgeIssued:  payload.BridgeIssued,
	}
	if d := payload.DriftDetected; d != nil && strings.TrimSpace(d.Character) != "" {
		result.Drift = &DriftSignal{
			Character:   strings.TrimSpace(d.Character),
			Kind:        driftKind(d.Kind),
			BridgeReady: d.BridgeReady,
		}
	}
	if n := payload.RelationalNote; n != nil && strings.TrimSpace(n.AboutCharacter) != "" {
		result.RelationalNote = &drift.RelationalNote{
			AboutCharacter: strings.TrimSpace(n.AboutCharacter),
			Observation:    strings.TrimSpace(n.Observation),
			SourceQuote:    strings.TrimSpace(n.SourceQuote),
		}
	}
	if cd := payload.ContradictionDetected; cd != nil && strings.TrimSpace(cd.Description) != "" {
		result.Contradiction = &types.Contradiction{
			Description: strings.TrimSpace(cd.Description),
			FirstQuote:  strings.TrimSpace(cd.FirstQuote),
			SecondQuote: strings.TrimSpace(cd.SecondQuote),
		}
	}
	return result, nil
}

// SynthesizeProfile turns the complete interview into a character profile.
func (c *Client) SynthesizeProfile(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	system, user, err := prompt.Synthesis(prompt.SynthesisData{
		CharacterName:   req.CharacterName,
		Role:            req.Role,
		Answers:         req.Answers,
		RelationalNotes: req.RelationalNotes,
	})
	if err != nil {
		return SynthesisResult{}, err
	}

	raw, err := c.model.Complete(ctx, system, user)
	if err != nil {
		slog.Error("synthesis request failed", "model", c.model.Name(), "error", err.Error())
		return SynthesisResult{}, fmt.Errorf("profile synthesis failed: %w", err)
	}

	payload, err := parseSynthesisPayload(raw)
	if err != nil {
		slog.Error("synthesis response rejected", "model", c.model.Name(), "error", err.Error())
		return SynthesisResult{}, fmt.Errorf("profile synthesis failed: %w", err)
	}

	profile := types.Profile{
		Description:      strings.TrimSpace(payload.Profile.Description),
		CoreBelief:       strings.TrimSpace(payload.Profile.CoreBelief),
		PressureType:     strings.TrimSpace(payload.Profile.PressureType),
		Personality:      strings.TrimSpace(payload.Profile.Personality),
		SensoryAnchor:    strings.TrimSpace(payload.Profile.SensoryAnchor),
		PrivateSelf:      strings.TrimSpace(payload.Profile.PrivateSelf),
		UnspokenReaction: strings.TrimSpace(payload.Profile.UnspokenReaction),
	}
	if profile.Description == "" && profile.Personality == "" {
		return SynthesisResult{}, fmt.Errorf("profile synthesis failed: empty profile")
	}

	result := SynthesisResult{Profile: profile}
	for _, cd := range payload.Contradictions {
		if strings.TrimSpace(cd.Description) == "" {
			continue
		}
		result.Contradictions = append(result.Contradictions, types.Contradiction{
			Description: strings.TrimSpace(cd.Description),
			FirstQuote:  strings.TrimSpace(cd.FirstQuote),
			SecondQuote: strings.TrimSpace(cd.SecondQuote),
		})
	}
	for _, th := range payload.Threads {
		if strings.TrimSpace(th.Title) == "" {
			continue
		}
		result.Threads = append(result.Threads, types.PlotThread{
			Title:       strings.TrimSpace(th.Title),
			Description: strings.TrimSpace(th.Description),
			ChapterHint: strings.TrimSpace(th.ChapterHint),
		})
	}
	return result, nil
}

// EmbodiedReply asks for one in-character reply.
func (c *Client) EmbodiedReply(ctx context.Context, req ReplyRequest) (ReplyResult, error) {
	history := make([]prompt.Line, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, prompt.Line{Role: m.Role, Text: m.Text})
	}
	system, user, err := prompt.Embodiment(prompt.EmbodimentData{
		CharacterName:  req.CharacterName,
		ProfileSummary: req.ProfileSummary,
		ChapterContext: req.ChapterContext,
		History:        history,
		LatestMessage:  req.LatestMessage,
		IsCorrection:   req.IsCorrection,
		IsClosing:      req.IsClosing,
	})
	if err != nil {
		return ReplyResult{}, err
	}

	raw, err := c.model.Complete(ctx, system, user)
	if err != nil {
		slog.Error("embodied reply request failed", "model", c.model.Name(), "error", err.Error())
		return ReplyResult{}, fmt.Errorf("reply generation failed: %w", err)
	}

	payload, err := parseReplyPayload(raw)
	if err != nil {
		slog.Error("embodied reply response rejected", "model", c.model.Name(), "error", err.Error())
		return ReplyResult{}, fmt.Errorf("reply generation failed: %w", err)
	}
	return ReplyResult{
		Reply:     payload.Reply,
		NewDetail: strings.TrimSpace(payload.NewDetailDetected),
	}, nil
}

func driftKind(raw string) drift.Kind {
	if raw == string(drift.KindSustainedFocus) {
		return drift.KindSustainedFocus
	}
	return drift.KindSingleMention
}
