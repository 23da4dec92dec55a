// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Customer
// model. Customers are resolved by email first, then phone; normalization
// creates them lazily when no match exists.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// FindCustomerByEmail returns the customer with the given email, or
// ErrNotFound. Empty emails never match.
func FindCustomerByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Customer, error) {
	if email == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var c domain.Customer
	err := db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCustomerByPhone returns the customer with the given phone, or
// ErrNotFound. Empty phones never match.
func FindCustomerByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.Customer, error) {
	if phone == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var c domain.Customer
	err := db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts a new customer row. customerID is the synthetic
// identifier (email, phone, or anonymous id); the caller is responsible for
// choosing it. Nil pointers persist as NULL.
func CreateCustomer(ctx context.Context, db *gorm.DB, customerID string, fullName, email, phone *string) (*domain.Customer, error) {
	c := &domain.Customer{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		RepeatCustomer: false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// MarkRepeatCustomer flips the repeat-customer flag. Called when a returning
// customer is matched during normalization.
func MarkRepeatCustomer(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ? AND repeat_customer = ?", id, false).
		Update("repeat_customer", true)
	return res.Error
}
