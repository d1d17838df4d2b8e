package users

import (
	"time"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
)

// Address is the user's delivery address.
type Address struct {
	Zipcode       string `json:"zipcode"`
	Address       string `json:"address"`
	AddressDetail string `json:"addressDetail"`
}

// DefaultAddress is seeded for users onboarded through social login before
// they set a real delivery address.
func DefaultAddress() Address {
	return Address{
		Zipcode:       "10540",
		Address:       "경기도 고양시 덕양구 항공대학로 76",
		AddressDetail: "한국항공대학교",
	}
}

type User struct {
	ID          string    `json:"id,omitempty"`       // Internal unique identifier
	ProviderID  string    `json:"providerId"`         // External-provider key, the natural lookup key
	Nickname    string    `json:"nickname,omitempty"` // Profile nickname from the provider
	Address     Address   `json:"address"`            // Delivery address
	Mileage     int       `json:"mileage"`            // Spendable mileage balance
	RecentTotal int       `json:"recentTotal"`        // Running total of recent payments
	Deletable   bool      `json:"deletable"`          // Whether the account may be removed
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// UseMileage deducts amount from the balance, refusing overdrafts.
func (u *User) UseMileage(amount int) error {
	if amount > u.Mileage {
		return apperrors.ErrInvalidMileage
	}
	u.Mileage -= amount
	return nil
}

// AddMileage credits amount to the balance.
func (u *User) AddMileage(amount int) {
	u.Mileage += amount
}

// UpdateRecentTotal applies a signed payment delta, never going below zero.
func (u *User) UpdateRecentTotal(delta int) {
	u.RecentTotal += delta
	if u.RecentTotal < 0 {
		u.RecentTotal = 0
	}
}
