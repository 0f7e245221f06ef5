package repository

import (
	"errors"

	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
)

type MoodRepository struct {
	db *gorm.DB
}

func NewMoodRepository(db *gorm.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// List returns all moods ordered by name.
func (r *MoodRepository) List() ([]model.Mood, error) {
	var moods []model.Mood
	err := r.db.Order("name ASC").Find(&moods).Error
	return moods, err
}

// FindByID returns nil when the id does not resolve.
func (r *MoodRepository) FindByID(id int) (*model.Mood, error) {
	var mood model.Mood
	err := r.db.First(&mood, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mood, nil
}

// FindByIDs resolves a set of mood ids, silently skipping unknown ones.
func (r *MoodRepository) FindByIDs(ids []int) ([]model.Mood, error) {
	var moods []model.Mood
	err := r.db.Where("id IN ?", ids).Find(&moods).Error
	return moods, err
}

func (r *MoodRepository) Create(mood *model.Mood) error {
	return r.db.Create(mood).Error
}

func (r *MoodRepository) Update(mood *model.Mood) error {
	return r.db.Save(mood).Error
}

func (r *MoodRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM movie_moods WHERE mood_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Mood{}, id).Error
	})
}
