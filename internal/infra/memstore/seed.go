package memstore

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// STORE_DRIVER=memory で起動したときのデモデータ
func SeedDemo(s *Store) error {
	products := []model.Product{
		{ID: 1, Name: "Smartphone", Description: "A powerful and feature-rich smartphone.", Price: decimal.RequireFromString("499.99"), IsActive: true},
		{ID: 2, Name: "Laptop", Description: "A high-performance laptop for work and play.", Price: decimal.RequireFromString("899.99"), IsActive: true},
		{ID: 7, Name: "Wireless Mouse", Description: "Compact mouse with a long battery life.", Price: decimal.RequireFromString("19.99"), IsActive: true},
		{ID: 9, Name: "Discontinued Cable", Price: decimal.RequireFromString("4.99"), IsActive: false},
	}
	for _, p := range products {
		if err := s.PutProduct(p); err != nil {
			return err
		}
	}

	if err := s.PutUser(model.User{ID: 1, Username: "user", Role: model.RoleUser, IsActive: true}); err != nil {
		return err
	}
	return s.PutProfile(model.Profile{
		UserID:    1,
		FirstName: "Joe",
		LastName:  "Joesephus",
		Email:     "joejoesephus@email.com",
		Address:   "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
	})
}
