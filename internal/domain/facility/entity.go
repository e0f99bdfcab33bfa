package facility

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus = errors.New("invalid facility status")
	ErrMissingName   = errors.New("facility name is required")
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusOffline:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

type Geolocation struct {
	Latitude  float64
	Longitude float64
}

type Facility struct {
	id                uuid.UUID
	name              string
	capacity          *int32
	baseRate          decimal.Decimal
	status            Status
	autoApprove       bool
	capacityThreshold *int32
	maxDurationHours  *float64
	location          *Geolocation
}

func NewFacility(
	id uuid.UUID,
	name string,
	capacity *int32,
	baseRate decimal.Decimal,
	status Status,
	autoApprove bool,
	capacityThreshold *int32,
	maxDurationHours *float64,
	location *Geolocation,
) (*Facility, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &Facility{
		id:                id,
		name:              name,
		capacity:          capacity,
		baseRate:          baseRate,
		status:            status,
		autoApprove:       autoApprove,
		capacityThreshold: capacityThreshold,
		maxDurationHours:  maxDurationHours,
		location:          location,
	}, nil
}

func (f *Facility) ID() uuid.UUID             { return f.id }
func (f *Facility) Name() string              { return f.name }
func (f *Facility) Capacity() *int32          { return f.capacity }
func (f *Facility) BaseRate() decimal.Decimal { return f.baseRate }
func (f *Facility) Status() Status            { return f.status }
func (f *Facility) AutoApprove() bool         { return f.autoApprove }
func (f *Facility) CapacityThreshold() *int32 { return f.capacityThreshold }
func (f *Facility) MaxDurationHours() *float64 {
	return f.maxDurationHours
}
func (f *Facility) Location() *Geolocation { return f.location }

// Bookable facilities accept new admissions and reschedule targets.
func (f *Facility) Bookable() bool {
	return f.status == StatusAvailable
}

// EstimateFee prices a booking at the hourly base rate.
func (f *Facility) EstimateFee(hours float64) decimal.Decimal {
	return f.baseRate.Mul(decimal.NewFromFloat(hours))
}
