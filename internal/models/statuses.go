package models

type UserRole string
type PackageStatus string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleDoorman UserRole = "doorman"

	PackageStatusPending  PackageStatus = "pending"
	PackageStatusPickedUp PackageStatus = "picked_up"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleDoorman
}

func (s PackageStatus) IsValid() bool {
	return s == PackageStatusPending || s == PackageStatusPickedUp
}
