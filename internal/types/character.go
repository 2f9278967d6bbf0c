package types

import (
	"strings"
	"time"
)

// RoleType is a character's narrative function in the book.
type RoleType string

const (
	RoleProtagonist RoleType = "protagonist"
	RolePressure    RoleType = "pressure"
	RoleMirror      RoleType = "mirror"
	RoleSupport     RoleType = "support"
	RoleShadow      RoleType = "shadow"
	RoleSpecial     RoleType = "special"
)

// ParseRole maps a stored role string to a RoleType, defaulting to special.
func ParseRole(s string) RoleType {
	role := RoleType(strings.ToLower(strings.TrimSpace(s)))
	switch role {
	case RoleProtagonist, RolePressure, RoleMirror, RoleSupport, RoleShadow, RoleSpecial:
		return role
	default:
		return RoleSpecial
	}
}

// Character is the persisted character record the orchestrator reads and writes.
type Character struct {
	ID          int       `json:"id"`
	BookID      int       `json:"book_id"`
	DisplayName string    `json:"display_name"`
	Role        RoleType  `json:"role_type"`
	Profile     Profile   `json:"profile"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Name returns the name used when addressing the author about this character.
func (c *Character) Name() string {
	if c == nil || c.DisplayName == "" {
		return "this character"
	}
	return c.DisplayName
}

// Profile is the synthesized psychology of a character. Probe-sourced fields
// (sensory anchor, private self, unspoken reaction) stay empty until the
// corresponding interview probe has been asked and answered.
type Profile struct {
	Description      string `json:"description"`
	CoreBelief       string `json:"core_belief"`
	PressureType     string `json:"pressure_type"`
	Personality      string `json:"personality"`
	SensoryAnchor    string `json:"sensory_anchor"`
	PrivateSelf      string `json:"private_self"`
	UnspokenReaction string `json:"unspoken_reaction"`
}

// Summary renders the profile as labeled sections for prompt assembly.
func (c *Character) Summary() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, 8)
	if c.Profile.Description != "" {
		parts = append(parts, "WHO THEY ARE: "+c.Profile.Description)
	}
	if c.Profile.CoreBelief != "" {
		parts = append(parts, "CORE BELIEF: "+c.Profile.CoreBelief)
	}
	if c.Profile.PressureType != "" {
		parts = append(parts, "EMOTIONAL FUNCTION: "+c.Profile.PressureType)
	}
	if c.Profile.SensoryAnchor != "" {
		parts = append(parts, "SENSORY ANCHOR: "+c.Profile.SensoryAnchor)
	}
	if c.Profile.PrivateSelf != "" {
		parts = append(parts, "PRIVATE SELF: "+c.Profile.PrivateSelf)
	}
	if c.Profile.UnspokenReaction != "" {
		parts = append(parts, "UNSPOKEN REACTION: "+c.Profile.UnspokenReaction)
	}
	if c.Profile.Personality != "" {
		parts = append(parts, "WRITER NOTES: "+c.Profile.Personality)
	}
	if c.Role != "" {
		parts = append(parts, "TYPE: "+string(c.Role))
	}
	return strings.Join(parts, "\n\n")
}

const (
	// NoteKindVoiceCorrection is an author correction to an in-character reply.
	NoteKindVoiceCorrection = "voice_correction"
	// NoteKindDiscovery is a confirmed detail the character surfaced while embodied.
	NoteKindDiscovery = "discovery"
)

// CalibrationNote is an author-supplied steering note for future in-character
// behavior. Notes accumulate; they are never overwritten or summarized away.
type CalibrationNote struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Label returns the prefix used when the note is written to the record.
func (n CalibrationNote) Label() string {
	if n.Kind == NoteKindDiscovery {
		return "[Voice session discovery]"
	}
	return "[Voice calibration]"
}

// PlotThread is a story thread discovered during synthesis.
type PlotThread struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ChapterHint string `json:"chapter_hint"`
}

// Contradiction is a tension between two things the author said, flagged for
// review rather than auto-resolved.
type Contradiction struct {
	Description string `json:"description"`
	FirstQuote  string `json:"first_quote"`
	SecondQuote string `json:"second_quote"`
}
