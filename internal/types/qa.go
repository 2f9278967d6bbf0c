package types

// QA is one question/answer pair, the structured record synthesis consumes.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
