package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

func strptr(s string) *string { return &s }

func TestCreateAndFindCustomer(t *testing.T) {
	db := newChannelDB(t, "custrepo1", &domain.Customer{})
	ctx := context.Background()

	c, err := CreateCustomer(ctx, db, "maria@example.com", strptr("Maria Papadopoulou"), strptr("maria@example.com"), strptr("+30-210-5551234"))
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.RepeatCustomer {
		t.Fatalf("new customers must not be repeat customers")
	}

	byEmail, err := FindCustomerByEmail(ctx, db, "maria@example.com")
	if err != nil || byEmail.ID != c.ID {
		t.Fatalf("FindCustomerByEmail: %+v %v", byEmail, err)
	}
	byPhone, err := FindCustomerByPhone(ctx, db, "+30-210-5551234")
	if err != nil || byPhone.ID != c.ID {
		t.Fatalf("FindCustomerByPhone: %+v %v", byPhone, err)
	}

	if _, err := FindCustomerByEmail(ctx, db, "ghost@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown email: expected not found, got %v", err)
	}
}

func TestFindCustomer_EmptyIdentifiersNeverMatch(t *testing.T) {
	db := newChannelDB(t, "custrepo2", &domain.Customer{})
	ctx := context.Background()

	// An anonymous customer has NULL email and phone; an empty search string
	// must not accidentally match it.
	if _, err := CreateCustomer(ctx, db, "anon_1", nil, nil, nil); err != nil {
		t.Fatalf("CreateCustomer anon: %v", err)
	}

	if _, err := FindCustomerByEmail(ctx, db, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("empty email must be not found, got %v", err)
	}
	if _, err := FindCustomerByPhone(ctx, db, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("empty phone must be not found, got %v", err)
	}
}

func TestMarkRepeatCustomer_Idempotent(t *testing.T) {
	db := newChannelDB(t, "custrepo3", &domain.Customer{})
	ctx := context.Background()

	c, err := CreateCustomer(ctx, db, "p1", nil, nil, strptr("5550001"))
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	if err := MarkRepeatCustomer(ctx, db, c.ID); err != nil {
		t.Fatalf("MarkRepeatCustomer: %v", err)
	}
	// Second mark is a no-op, not an error.
	if err := MarkRepeatCustomer(ctx, db, c.ID); err != nil {
		t.Fatalf("MarkRepeatCustomer again: %v", err)
	}

	got, err := FindCustomerByPhone(ctx, db, "5550001")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.RepeatCustomer {
		t.Fatalf("expected repeat_customer=true")
	}
}
