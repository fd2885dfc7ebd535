package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/blockedby/dosimetria-portal/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ProfilesRepository reads portal profiles through GORM.
type ProfilesRepository struct {
	db *gorm.DB
}

// NewProfilesRepository creates a profiles repository. The portal hands it the
// elevated GORM handle: role checks must see every profile regardless of the
// caller's own row level security.
func NewProfilesRepository(db *gorm.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// GetByID returns the profile with the given id.
func (r *ProfilesRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}
