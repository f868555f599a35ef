package storage

import (
	"errors"

	"binance-trade-bot/domain"

	"gorm.io/gorm"
)

// Storage persists executed order records and telegram subscribers.
type Storage struct {
	dataBase *gorm.DB
}

func New(dialector gorm.Dialector) (*Storage, error) {
	dataBase, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	storage := Storage{dataBase: dataBase}
	if err := storage.dataBase.AutoMigrate(&domain.OrderRecord{}, &domain.User{}); err != nil {
		return nil, err
	}

	return &storage, nil
}

// SaveOrderRecords writes a batch of executed order legs. Called by the
// engine's settlement loop; a failure here is retried on the next pass.
func (storage *Storage) SaveOrderRecords(records []domain.OrderRecord) error {
	if len(records) == 0 {
		return nil
	}
	return storage.dataBase.Create(&records).Error
}

// GetOrderRecords returns the persisted order history, oldest first.
func (storage *Storage) GetOrderRecords() ([]domain.OrderRecord, error) {
	var records []domain.OrderRecord
	if err := storage.dataBase.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (storage *Storage) NewUser(newUser *domain.User) error {
	return storage.dataBase.Create(newUser).Error
}

func (storage *Storage) FindUser(findUser *domain.User) (domain.User, bool, error) {
	var user domain.User

	result := storage.dataBase.Where(*findUser).Take(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if result.Error != nil {
		return domain.User{}, false, result.Error
	}

	return user, true, nil
}

func (storage *Storage) GetUsers() ([]domain.User, error) {
	var users []domain.User

	if err := storage.dataBase.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
