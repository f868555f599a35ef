package services

import (
	"binance-trade-bot/domain"
)

type usersStorage interface {
	NewUser(newUser *domain.User) error
	FindUser(findUser *domain.User) (domain.User, bool, error)
	GetUsers() ([]domain.User, error)
}

type UsersService struct {
	storage usersStorage
}

func NewUsersService(storage usersStorage) *UsersService {
	return &UsersService{storage: storage}
}

// CheckAddUser saves the user, doing nothing if it already exists.
func (usersService *UsersService) CheckAddUser(user *domain.User) error {
	_, ok, err := usersService.storage.FindUser(user)
	if err != nil {
		return err
	}

	if !ok {
		return usersService.storage.NewUser(user)
	}
	return nil
}

func (usersService *UsersService) GetUsers() ([]domain.User, error) {
	return usersService.storage.GetUsers()
}
