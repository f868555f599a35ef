package services_test

import (
	"testing"

	"binance-trade-bot/domain"
	"binance-trade-bot/services"

	"github.com/stretchr/testify/assert"
)

type testUsersStorage struct {
	users []domain.User
}

func (testUsersStorage *testUsersStorage) NewUser(newUser *domain.User) error {
	testUsersStorage.users = append(testUsersStorage.users, *newUser)
	return nil
}

func (testUsersStorage *testUsersStorage) GetUsers() ([]domain.User, error) {
	return testUsersStorage.users, nil
}

func (testUsersStorage *testUsersStorage) FindUser(findUser *domain.User) (domain.User, bool, error) {
	for _, user := range testUsersStorage.users {
		if user.ChatID == findUser.ChatID {
			return user, true, nil
		}
	}

	return domain.User{}, false, nil
}

func TestCheckAddUser(t *testing.T) {
	testUsersStorage := testUsersStorage{}

	userService := services.NewUsersService(&testUsersStorage)

	users, err := userService.GetUsers()
	assert.Nil(t, err)
	assert.Equal(t, []domain.User(nil), users)

	user1 := domain.User{ChatID: 1}

	assert.Nil(t, userService.CheckAddUser(&user1))

	users, _ = userService.GetUsers()
	assert.Equal(t, []domain.User{user1}, users)

	assert.Nil(t, userService.CheckAddUser(&user1))
	assert.Nil(t, userService.CheckAddUser(&user1))

	users, _ = userService.GetUsers()
	assert.Equal(t, []domain.User{user1}, users)

	user2 := domain.User{ChatID: 2}

	assert.Nil(t, userService.CheckAddUser(&user2))

	users, _ = userService.GetUsers()
	assert.Equal(t, []domain.User{user1, user2}, users)
}
