package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AuditedAggregateRoot extends BaseAggregateRoot with creator tracking.
// CreatedBy holds the acting user taken from the request identity.
type AuditedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewAuditedAggregateRoot creates a new audited aggregate root
func NewAuditedAggregateRoot() AuditedAggregateRoot {
	return AuditedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
	}
}

// SetCreatedBy sets the creator user ID
func (a *AuditedAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	a.CreatedBy = &userID
}

// GetCreatedBy returns the creator user ID
func (a *AuditedAggregateRoot) GetCreatedBy() *uuid.UUID {
	return a.CreatedBy
}
