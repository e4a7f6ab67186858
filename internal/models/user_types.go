package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles and account statuses. A dealer can only place orders once an
// admin has flipped the account to approved.
const (
	RoleDealer   = "DEALER"
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"

	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusSuspended = "SUSPENDED"
)

// User is the model for the 'users' table. Dealers carry their commercial
// terms (discount rate, credit limit) directly on the row.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         string `json:"role" db:"role"`
	Status       string `json:"status" db:"status"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	ContactName  string `json:"contactName" db:"contact_name"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`

	// --- Dealer commercial terms ---
	DiscountRate float64 `json:"discountRate" db:"discount_rate"`
	CreditLimit  float64 `json:"creditLimit" db:"credit_limit"`

	// --- Company / billing profile (pointers = clean JSON) ---
	CompanyName *string `json:"companyName,omitempty" db:"company_name"`
	TaxNumber   *string `json:"taxNumber,omitempty" db:"tax_number"`
	TaxOffice   *string `json:"taxOffice,omitempty" db:"tax_office"`
	Address     *string `json:"address,omitempty" db:"address"`
	City        *string `json:"city,omitempty" db:"city"`
	District    *string `json:"district,omitempty" db:"district"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsApprovedDealer reports whether this account may place orders.
func (u *User) IsApprovedDealer() bool {
	return u.Role == RoleDealer && u.Status == StatusApproved
}

// IsStaff reports whether this account may use the admin back office.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleOperator
}

// Password wraps a plaintext/hash pair so handlers never touch bcrypt directly.
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
