// Package questions holds the fixed interview scripts and one-shot probes.
package questions

import (
	"fmt"

	"github.com/quillworks/dossier/internal/types"
)

// openingQuestions is the scripted spine of a structured interview, keyed by
// the character's narrative role. Five questions per role; adaptive follow-ups
// consume the same slots once they take over.
var openingQuestions = map[types.RoleType][]string{
	types.RoleSpecial: {
		"Tell me about this character like you're describing them to a friend who's never met them.",
		"What does this character want more than anything — not in the story, right now in their life?",
		"What's the one thing this character would never do? And why does that matter?",
		"How does this character make other people feel when they walk into a room?",
		"What does this character know that nobody else in the story knows yet?",
	},
	types.RolePressure: {
		"Tell me about this character. Who are they and what do they mean to the protagonist?",
		"What does this character do — even with good intentions — that creates pressure?",
		"Does the protagonist love this character, fear them, or both? Why?",
		"What would this character say if they could be completely honest with the protagonist?",
		"What scene involving this character would make a reader feel the most?",
	},
	types.RoleMirror: {
		"Tell me about this character. What do they represent to the protagonist?",
		"Is the protagonist jealous of them, inspired by them, or something more complicated?",
		"What does this character have that the protagonist wants — and what does the protagonist have that this character might secretly want?",
		"What happens in the story when this character fails at something?",
		"What's the scene where these two characters are most honest with each other?",
	},
	types.RoleSupport: {
		"Tell me about this character. What role do they play in the protagonist's life?",
		"How does this character show up for the protagonist — what do they actually do?",
		"What does this character see in the protagonist that the protagonist can't see in herself?",
		"Is there a moment where this character's support becomes complicated or conditional?",
		"What would the protagonist lose if this character disappeared from the story?",
	},
	types.RoleShadow: {
		"Tell me about this character. What part of the protagonist do they represent?",
		"What does this character do that the protagonist secretly wishes she could do?",
		"How does encountering this character change the protagonist — even temporarily?",
		"Is this character aware of the effect they have? Do they use it?",
		"What's the scene where the protagonist has to confront what this character represents?",
	},
}

// ForRole returns the fixed question script for a role. Protagonists get the
// special script; unknown roles fall back to it too.
func ForRole(role types.RoleType) []string {
	if qs, ok := openingQuestions[role]; ok {
		return qs
	}
	return openingQuestions[types.RoleSpecial]
}

// ProbeKind names a one-shot specialized question injected outside the script.
type ProbeKind string

const (
	ProbeSensory     ProbeKind = "sensory"
	ProbePrivateLife ProbeKind = "private_life"
	ProbeUnspoken    ProbeKind = "unspoken"
	ProbeClosing     ProbeKind = "closing"
)

// ProbeText renders the probe question for a character by name.
func ProbeText(kind ProbeKind, characterName string) string {
	switch kind {
	case ProbeSensory:
		return fmt.Sprintf("Close your eyes for a second. When %s walks into a room, what's the first thing you notice — a sound, a smell, the way the air changes? Don't think. Just say it.", characterName)
	case ProbePrivateLife:
		return fmt.Sprintf("What does %s do when nobody's watching? Not the big secret — the small private habit that would embarrass them if anyone found out.", characterName)
	case ProbeUnspoken:
		return fmt.Sprintf("What does the protagonist think about %s but would never say out loud — not even to herself?", characterName)
	case ProbeClosing:
		return fmt.Sprintf("Last one. Is there anything about %s you haven't told me — the thing you've been circling around this whole conversation?", characterName)
	default:
		return ""
	}
}

// RoleWarrantsUnspokenProbe reports whether the unspoken-reaction probe applies
// to this role. Only pressure and shadow characters carry a silent judgment
// the protagonist won't voice.
func RoleWarrantsUnspokenProbe(role types.RoleType) bool {
	return role == types.RolePressure || role == types.RoleShadow
}

// IntroFraming is the opening message shown before a structured interview starts.
func IntroFraming(characterName string) string {
	return fmt.Sprintf("Let's talk about %s.\n\nI'm going to ask you some questions. Answer like you're talking to a friend — no right answers, no wrong answers. The more specific and honest you are, the better the profile and the stronger the story.\n\nReady when you are.", characterName)
}
