// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package match

import (
	"sort"
	"time"
)

// Attribute names a scored dimension of a pair of records.
type Attribute string

// User-tunable attributes. Their weights come from the subject's profile.
const (
	AttrCleanliness    Attribute = "cleanliness"
	AttrPets           Attribute = "pets"
	AttrRoomType       Attribute = "room_type"
	AttrSleepSchedule  Attribute = "sleep_schedule"
	AttrNoiseTolerance Attribute = "noise_tolerance"
	AttrSocialness     Attribute = "socialness"
	AttrSmoking        Attribute = "smoking"
	AttrRoommateCount  Attribute = "roommate_count"
	AttrLeaseMonths    Attribute = "lease_months"
	AttrHobbies        Attribute = "hobbies"
	AttrMusic          Attribute = "music"
)

// System attributes. Their weights are fixed by configuration.
const (
	AttrAge        Attribute = "age"
	AttrMoveIn     Attribute = "move_in"
	AttrUniversity Attribute = "university"
	AttrOffice     Attribute = "office"
)

var userAttributes = []Attribute{
	AttrCleanliness,
	AttrPets,
	AttrRoomType,
	AttrSleepSchedule,
	AttrNoiseTolerance,
	AttrSocialness,
	AttrSmoking,
	AttrRoommateCount,
	AttrLeaseMonths,
	AttrHobbies,
	AttrMusic,
}

var systemAttributes = []Attribute{
	AttrAge,
	AttrMoveIn,
	AttrUniversity,
	AttrOffice,
}

// UserAttributes returns the user-tunable attributes in scoring order.
func UserAttributes() []Attribute {
	out := make([]Attribute, len(userAttributes))
	copy(out, userAttributes)
	return out
}

// SystemAttributes returns the system-weighted attributes in scoring order.
func SystemAttributes() []Attribute {
	out := make([]Attribute, len(systemAttributes))
	copy(out, systemAttributes)
	return out
}

// IsUserAttribute reports whether a is user-tunable.
func IsUserAttribute(a Attribute) bool {
	for _, u := range userAttributes {
		if u == a {
			return true
		}
	}
	return false
}

// IsSystemAttribute reports whether a carries a fixed system weight.
func IsSystemAttribute(a Attribute) bool {
	for _, s := range systemAttributes {
		if s == a {
			return true
		}
	}
	return false
}

// Weights maps attributes to an importance in [0, 1].
type Weights map[Attribute]float64

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Keys returns the attributes in sorted order.
func (w Weights) Keys() []Attribute {
	keys := make([]Attribute, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Breakdown holds per-attribute similarity in (0, 1] for one scored pair.
type Breakdown map[Attribute]float64

// Clone returns an independent copy.
func (b Breakdown) Clone() Breakdown {
	if b == nil {
		return nil
	}
	out := make(Breakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Person holds identity-adjacent attributes that are not part of a Profile.
type Person struct {
	ID         int64     `json:"id" validate:"gt=0"`
	Name       string    `json:"name,omitempty" validate:"max=200"`
	Gender     string    `json:"gender,omitempty" validate:"max=50"`
	BirthDate  time.Time `json:"birth_date"`
	University string    `json:"university,omitempty" validate:"max=200"`
	Office     *GeoPoint `json:"office,omitempty" validate:"omitempty"`

	// FriendRequests only increases over time and boosts ranking.
	FriendRequests int `json:"friend_requests" validate:"gte=0"`
}

// Profile describes housing preferences and the owner's attribute weights.
type Profile struct {
	Cleanliness    Cleanliness    `json:"cleanliness" validate:"required,oneof=VERY_CLEAN CLEAN AVERAGE MESSY VERY_MESSY"`
	Pets           Pets           `json:"pets" validate:"required,oneof=NO_PETS OPEN_TO_PETS HAS_PETS"`
	RoomType       RoomType       `json:"room_type" validate:"required,oneof=SHARED PRIVATE ENSUITE STUDIO"`
	SleepSchedule  SleepSchedule  `json:"sleep_schedule" validate:"required,oneof=EARLY_BIRD REGULAR NIGHT_OWL"`
	NoiseTolerance NoiseTolerance `json:"noise_tolerance" validate:"required,oneof=QUIET SOMEWHAT_QUIET MODERATE SOMEWHAT_NOISY NOISY"`
	Socialness     Socialness     `json:"socialness" validate:"required,oneof=RESERVED SOMEWHAT_RESERVED BALANCED SOMEWHAT_SOCIAL VERY_SOCIAL"`
	Smoking        bool           `json:"smoking"`

	// RoommateCount is the number of additional roommates wanted.
	RoommateCount int       `json:"roommate_count" validate:"gte=0,lte=20"`
	LeaseMonths   int       `json:"lease_months" validate:"gte=0,lte=120"`
	MoveIn        time.Time `json:"move_in"`
	Hobbies       string    `json:"hobbies,omitempty" validate:"max=1000"`
	Music         string    `json:"music,omitempty" validate:"max=1000"`

	Weights Weights `json:"weights" validate:"required,weightsum,dive,keys,oneof=cleanliness pets room_type sleep_schedule noise_tolerance socialness smoking roommate_count lease_months hobbies music,endkeys,gte=0,lte=1"`
}

// Record is the unit supplied by the data-access collaborator.
type Record struct {
	Person  Person  `json:"person"`
	Profile Profile `json:"profile"`
}

// ID returns the person id.
//
//nolint:gocritic // value receiver keeps Record usable as a map value
func (r Record) ID() int64 {
	return r.Person.ID
}

// Capacity returns the number of additional roommates wanted, at least 1.
//
//nolint:gocritic // value receiver keeps Record usable as a map value
func (r Record) Capacity() int {
	if r.Profile.RoommateCount < 1 {
		return 1
	}
	return r.Profile.RoommateCount
}

// RejectionStatus is the persisted negative signal kind.
type RejectionStatus string

const (
	StatusRejected RejectionStatus = "REJECTED"
	StatusDeclined RejectionStatus = "DECLINED"
)

// Rejection is a persisted negative signal from one person toward another.
// It is consumed as a filter and never produced by the core.
type Rejection struct {
	FromID    int64           `json:"from_id"`
	ToID      int64           `json:"to_id"`
	Status    RejectionStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Involves reports whether the rejection is between a and b in either direction.
//
//nolint:gocritic // small value type
func (r Rejection) Involves(a, b int64) bool {
	return (r.FromID == a && r.ToID == b) || (r.FromID == b && r.ToID == a)
}

// Outcome is the result of a presented match used to adapt weights.
type Outcome string

const (
	OutcomeAccepted    Outcome = "ACCEPTED"
	OutcomeRequestSent Outcome = "REQUEST_SENT"
	OutcomeRejected    Outcome = "REJECTED"
)

// IsPositive reports whether the outcome reinforces the matched attributes.
func (o Outcome) IsPositive() bool {
	return o == OutcomeAccepted || o == OutcomeRequestSent
}

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAccepted, OutcomeRequestSent, OutcomeRejected:
		return true
	default:
		return false
	}
}

// ParseOutcome converts a string into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", &InvalidAttributeError{Attribute: "outcome", Value: s}
	}
	return o, nil
}

// FeedbackEntry is one applied feedback event, kept as weight history.
type FeedbackEntry struct {
	ID        string    `json:"id"`
	SubjectID int64     `json:"subject_id"`
	TargetID  int64     `json:"target_id"`
	Outcome   Outcome   `json:"outcome"`
	Before    Weights   `json:"before"`
	After     Weights   `json:"after"`
	CreatedAt time.Time `json:"created_at"`
}
