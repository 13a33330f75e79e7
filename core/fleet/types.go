package fleet

import (
	"errors"
	"time"
)

// Allocation failures are surfaced to the requester as typed errors, never as
// a crash. See the error taxonomy in the package documentation.
var (
	// ErrDriverNotFound signals that no available vehicle was found within
	// the search radius.
	ErrDriverNotFound = errors.New("fleet: no driver found")

	// ErrVehicleTaken signals that the proposed vehicle was reserved by a
	// concurrent request between proposal issuance and reservation.
	ErrVehicleTaken = errors.New("fleet: vehicle taken")

	// ErrUnknownRequest signals a reservation for a request that was never
	// the subject of an inquiry.
	ErrUnknownRequest = errors.New("fleet: unknown request")

	// ErrUnknownVehicle signals an operation against a vehicle id that is
	// not part of the fleet.
	ErrUnknownVehicle = errors.New("fleet: unknown vehicle")
)

// Config defines fleet dispatch settings.
type Config struct {
	// SearchRadiusM bounds the nearest-available vehicle lookup.
	SearchRadiusM float64 `json:"search_radius_m"`
	// MaxCandidates caps how many nearby vehicles are priced per inquiry.
	MaxCandidates int `json:"max_candidates"`
	// BaseFare is the flag-drop amount added to every trip.
	BaseFare float64 `json:"base_fare"`
	// FarePerSecond prices the onboard travel time.
	FarePerSecond float64 `json:"fare_per_second"`
	// ProposalTTLSeconds bounds the lifetime of a cached travel proposal.
	ProposalTTLSeconds int `json:"proposal_ttl_seconds"`
	// RefuelThresholdSoC sends a vehicle to the depot after drop-off when
	// its state of charge falls below this value.
	RefuelThresholdSoC float64 `json:"refuel_threshold_soc"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.SearchRadiusM <= 0 {
		c.SearchRadiusM = 5000
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 5
	}
	if c.FarePerSecond <= 0 {
		c.FarePerSecond = 0.01
	}
	if c.ProposalTTLSeconds <= 0 {
		c.ProposalTTLSeconds = 60
	}
	if c.RefuelThresholdSoC <= 0 {
		c.RefuelThresholdSoC = 0.2
	}
}

// ProposalTTL returns the proposal lifetime as a duration.
func (c Config) ProposalTTL() time.Duration {
	return time.Duration(c.ProposalTTLSeconds) * time.Second
}

// Confirmation is returned on a successful reservation.
type Confirmation struct {
	RequestID   string
	VehicleID   string
	PickupTime  int64
	DropoffTime int64
	Fare        float64
}
