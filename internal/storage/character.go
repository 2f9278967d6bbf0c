package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/quillworks/dossier/internal/drift"
	"github.com/quillworks/dossier/internal/interview"
	"github.com/quillworks/dossier/internal/types"
)

type characterModel struct {
	ID               int
	BookID           int
	Name             string
	RoleType         string
	Description      string
	CoreBelief       string
	PressureType     string
	Personality      string
	SensoryAnchor    string
	PrivateSelf      string
	UnspokenReaction string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// characterRepo accesses character records.
type characterRepo struct {
	db *gorm.DB
}

// NewCharacterRepo returns a CharacterRecords backed by PostgreSQL.
func NewCharacterRepo(db *gorm.DB) interview.CharacterRecords {
	return &characterRepo{db: db}
}

func (r *characterRepo) GetByID(ctx context.Context, id int) (*types.Character, error) {
	var model characterModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get character by id: %w", err)
	}
	return characterFromModel(model), nil
}

// AcceptProfile writes a reviewed profile onto the record, replacing whatever
// was there before.
func (r *characterRepo) AcceptProfile(ctx context.Context, id int, profile types.Profile) error {
	if err := r.db.WithContext(ctx).
		Model(&characterModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"description":       profile.Description,
			"core_belief":       profile.CoreBelief,
			"pressure_type":     profile.PressureType,
			"personality":       profile.Personality,
			"sensory_anchor":    profile.SensoryAnchor,
			"private_self":      profile.PrivateSelf,
			"unspoken_reaction": profile.UnspokenReaction,
		}).Error; err != nil {
		return fmt.Errorf("failed to accept profile: %w", err)
	}
	return nil
}

// AppendCalibrationNotes appends labeled note lines to the record's writer
// notes. Existing notes are never rewritten.
func (r *characterRepo) AppendCalibrationNotes(ctx context.Context, id int, notes []types.CalibrationNote) error {
	if len(notes) == 0 {
		return nil
	}

	var model characterModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return fmt.Errorf("failed to get character by id: %w", err)
	}

	personality := model.Personality
	for _, note := range notes {
		text := strings.TrimSpace(note.Text)
		if text == "" {
			continue
		}
		line := note.Label() + " " + text
		if personality == "" {
			personality = line
		} else {
			personality += "\n\n" + line
		}
	}
	if personality == model.Personality {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Model(&characterModel{}).
		Where("id = ?", id).
		Update("personality", personality).Error; err != nil {
		return fmt.Errorf("failed to append calibration notes: %w", err)
	}
	return nil
}

// relationalNoteModel maps to the relational_notes table, the archive of
// cross-character perception statements captured during interviews.
type relationalNoteModel struct {
	ID             int
	CharacterID    int
	AboutCharacter string
	Observation    string
	SourceQuote    string
	CreatedAt      time.Time
}

func (relationalNoteModel) TableName() string {
	return "relational_notes"
}

// ArchiveRelationalNotes stores the interview's relational notes verbatim.
func (r *characterRepo) ArchiveRelationalNotes(ctx context.Context, characterID int, notes []drift.RelationalNote) error {
	if len(notes) == 0 {
		return nil
	}
	records := make([]relationalNoteModel, 0, len(notes))
	for _, note := range notes {
		records = append(records, relationalNoteModel{
			CharacterID:    characterID,
			AboutCharacter: note.AboutCharacter,
			Observation:    note.Observation,
			SourceQuote:    note.SourceQuote,
		})
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to archive relational notes: %w", err)
	}
	return nil
}

func characterFromModel(model characterModel) *types.Character {
	return &types.Character{
		ID:          model.ID,
		BookID:      model.BookID,
		DisplayName: model.Name,
		Role:        types.ParseRole(model.RoleType),
		Profile: types.Profile{
			Description:      model.Description,
			CoreBelief:       model.CoreBelief,
			PressureType:     model.PressureType,
			Personality:      model.Personality,
			SensoryAnchor:    model.SensoryAnchor,
			PrivateSelf:      model.PrivateSelf,
			UnspokenReaction: model.UnspokenReaction,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
