package repository

import (
	"forum-system/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{orm: db}
}

// Create inserts the account; a taken email or username yields ErrDuplicate
func (r *UserRepository) Create(user *model.User) error {
	return duplicate(r.orm.Create(user).Error)
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var u model.User
	if err := r.orm.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ExistsOther reports whether another account already uses email or username
func (r *UserRepository) ExistsOther(excludeID uint, email, username string) (bool, error) {
	var count int64
	q := r.orm.Model(&model.User{}).Where("email = ? OR username = ?", email, username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile writes the editable profile columns
func (r *UserRepository) UpdateProfile(user *model.User) error {
	return duplicate(r.orm.Model(user).Select("Name", "Username", "Email", "Bio", "Avatar").Updates(user).Error)
}
