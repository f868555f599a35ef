package domain

// User is a telegram subscriber receiving completed-trade notifications.
type User struct {
	ID     uint  `gorm:"primarykey" json:"-"`
	ChatID int64 `gorm:"uniqueIndex"`
}
