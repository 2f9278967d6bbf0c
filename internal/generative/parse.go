package generative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Wire payloads. Field names are the contract with the prompt instructions;
// schemas are derived from these structs and every response is validated
// before it is mapped onto session state.

type driftPayload struct {
	Character   string `json:"character"`
	Kind        string `json:"kind,omitempty"`
	BridgeReady bool   `json:"bridge_ready,omitempty"`
}

type relationalNotePayload struct {
	AboutCharacter string `json:"about_character"`
	Observation    string `json:"observation,omitempty"`
	SourceQuote    string `json:"source_quote,omitempty"`
}

type contradictionPayload struct {
	Description string `json:"description"`
	FirstQuote  string `json:"first_quote,omitempty"`
	SecondQuote string `json:"second_quote,omitempty"`
}

type questionPayload struct {
	Question              string                 `json:"question"`
	ThreadHint            string                 `json:"thread_hint,omitempty"`
	DriftDetected         *driftPayload          `json:"drift_detected,omitempty"`
	RelationalNote        *relationalNotePayload `json:"relational_note,omitempty"`
	ContradictionDetected *contradictionPayload  `json:"contradiction_detected,omitempty"`
	NewCharactersDetected []string               `json:"new_characters_detected,omitempty"`
	BridgeIssued          bool                   `json:"bridge_issued,omitempty"`
}

type profilePayload struct {
	Description      string `json:"description,omitempty"`
	CoreBelief       string `json:"core_belief,omitempty"`
	PressureType     string `json:"pressure_type,omitempty"`
	Personality      string `json:"personality,omitempty"`
	SensoryAnchor    string `json:"sensory_anchor,omitempty"`
	PrivateSelf      string `json:"private_self,omitempty"`
	UnspokenReaction string `json:"unspoken_reaction,omitempty"`
}

type threadPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ChapterHint string `json:"chapter_hint,omitempty"`
}

type synthesisPayload struct {
	Profile        profilePayload         `json:"profile"`
	Contradictions []contradictionPayload `json:"contradictions,omitempty"`
	Threads        []threadPayload        `json:"threads,omitempty"`
}

type replyPayload struct {
	Reply             string `json:"reply"`
	NewDetailDetected string `json:"new_detail_detected,omitempty"`
}

var (
	questionSchema  = mustResolved[questionPayload]()
	synthesisSchema = mustResolved[synthesisPayload]()
	replySchema     = mustResolved[replyPayload]()
)

func mustResolved[T any]() *jsonschema.Resolved {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(err)
	}
	return resolved
}

// extractJSON cuts the outermost JSON object out of a raw model reply,
// tolerating prose or code fences around it.
func extractJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		return clean[start : end+1]
	}
	return clean
}

// decodeValidated extracts, schema-validates, and unmarshals one payload.
func decodeValidated[T any](raw string, schema *jsonschema.Resolved) (T, error) {
	var out T
	clean := extractJSON(raw)

	var instance any
	if err := json.Unmarshal([]byte(clean), &instance); err != nil {
		return out, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return out, fmt.Errorf("response does not match schema: %w", err)
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

func parseQuestionPayload(raw string) (questionPayload, error) {
	payload, err := decodeValidated[questionPayload](raw, questionSchema)
	if err != nil {
		return questionPayload{}, err
	}
	payload.Question = strings.TrimSpace(payload.Question)
	if payload.Question == "" {
		return questionPayload{}, fmt.Errorf("missing question")
	}
	return payload, nil
}

func parseSynthesisPayload(raw string) (synthesisPayload, error) {
	return decodeValidated[synthesisPayload](raw, synthesisSchema)
}

func parseReplyPayload(raw string) (replyPayload, error) {
	payload, err := decodeValidated[replyPayload](raw, replySchema)
	if err != nil {
		return replyPayload{}, err
	}
	payload.Reply = strings.TrimSpace(payload.Reply)
	if payload.Reply == "" {
		return replyPayload{}, fmt.Errorf("missing reply")
	}
	return payload, nil
}
