package repository

import (
	"errors"

	"github.com/user/streamly/internal/model"
	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// List returns all genres ordered by name.
func (r *GenreRepository) List() ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.Order("name ASC").Find(&genres).Error
	return genres, err
}

// FindByID returns nil when the id does not resolve.
func (r *GenreRepository) FindByID(id int) (*model.Genre, error) {
	var genre model.Genre
	err := r.db.First(&genre, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// FindByIDs resolves a set of genre ids, silently skipping unknown ones.
func (r *GenreRepository) FindByIDs(ids []int) ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.Where("id IN ?", ids).Find(&genres).Error
	return genres, err
}

func (r *GenreRepository) Create(genre *model.Genre) error {
	return r.db.Create(genre).Error
}

func (r *GenreRepository) Update(genre *model.Genre) error {
	return r.db.Save(genre).Error
}

func (r *GenreRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM movie_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Genre{}, id).Error
	})
}
