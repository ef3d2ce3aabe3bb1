// Roommatch - Roommate Matching and Group Assignment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roommatch

package match

// Ordinal is an enum with a fixed total order.
type Ordinal interface {
	Rank() (int, error)
}

// Cleanliness ranks 0 (VERY_CLEAN) through 4 (VERY_MESSY).
type Cleanliness string

const (
	CleanlinessVeryClean Cleanliness = "VERY_CLEAN"
	CleanlinessClean     Cleanliness = "CLEAN"
	CleanlinessAverage   Cleanliness = "AVERAGE"
	CleanlinessMessy     Cleanliness = "MESSY"
	CleanlinessVeryMessy Cleanliness = "VERY_MESSY"
)

// Pets ranks 0 (NO_PETS) through 2 (HAS_PETS).
type Pets string

const (
	PetsNone   Pets = "NO_PETS"
	PetsOpenTo Pets = "OPEN_TO_PETS"
	PetsHas    Pets = "HAS_PETS"
)

// RoomType ranks 0 (SHARED) through 3 (STUDIO).
type RoomType string

const (
	RoomShared  RoomType = "SHARED"
	RoomPrivate RoomType = "PRIVATE"
	RoomEnsuite RoomType = "ENSUITE"
	RoomStudio  RoomType = "STUDIO"
)

// SleepSchedule ranks 0 (EARLY_BIRD) through 2 (NIGHT_OWL).
type SleepSchedule string

const (
	SleepEarlyBird SleepSchedule = "EARLY_BIRD"
	SleepRegular   SleepSchedule = "REGULAR"
	SleepNightOwl  SleepSchedule = "NIGHT_OWL"
)

// NoiseTolerance ranks 0 (QUIET) through 4 (NOISY).
type NoiseTolerance string

const (
	NoiseQuiet         NoiseTolerance = "QUIET"
	NoiseSomewhatQuiet NoiseTolerance = "SOMEWHAT_QUIET"
	NoiseModerate      NoiseTolerance = "MODERATE"
	NoiseSomewhatNoisy NoiseTolerance = "SOMEWHAT_NOISY"
	NoiseNoisy         NoiseTolerance = "NOISY"
)

// Socialness ranks 0 (RESERVED) through 4 (VERY_SOCIAL).
type Socialness string

const (
	SocialReserved         Socialness = "RESERVED"
	SocialSomewhatReserved Socialness = "SOMEWHAT_RESERVED"
	SocialBalanced         Socialness = "BALANCED"
	SocialSomewhatSocial   Socialness = "SOMEWHAT_SOCIAL"
	SocialVerySocial       Socialness = "VERY_SOCIAL"
)

var (
	cleanlinessOrder = []Cleanliness{
		CleanlinessVeryClean, CleanlinessClean, CleanlinessAverage, CleanlinessMessy, CleanlinessVeryMessy,
	}
	petsOrder     = []Pets{PetsNone, PetsOpenTo, PetsHas}
	roomTypeOrder = []RoomType{RoomShared, RoomPrivate, RoomEnsuite, RoomStudio}
	sleepOrder    = []SleepSchedule{SleepEarlyBird, SleepRegular, SleepNightOwl}
	noiseOrder    = []NoiseTolerance{
		NoiseQuiet, NoiseSomewhatQuiet, NoiseModerate, NoiseSomewhatNoisy, NoiseNoisy,
	}
	socialOrder = []Socialness{
		SocialReserved, SocialSomewhatReserved, SocialBalanced, SocialSomewhatSocial, SocialVerySocial,
	}
)

func rankOf[T ~string](attr Attribute, v T, order []T) (int, error) {
	for i, o := range order {
		if o == v {
			return i, nil
		}
	}
	return 0, &InvalidAttributeError{Attribute: attr, Value: string(v)}
}

func (c Cleanliness) Rank() (int, error) { return rankOf(AttrCleanliness, c, cleanlinessOrder) }

func (p Pets) Rank() (int, error) { return rankOf(AttrPets, p, petsOrder) }

func (r RoomType) Rank() (int, error) { return rankOf(AttrRoomType, r, roomTypeOrder) }

func (s SleepSchedule) Rank() (int, error) { return rankOf(AttrSleepSchedule, s, sleepOrder) }

func (n NoiseTolerance) Rank() (int, error) { return rankOf(AttrNoiseTolerance, n, noiseOrder) }

func (s Socialness) Rank() (int, error) { return rankOf(AttrSocialness, s, socialOrder) }

// CleanlinessValues returns the cleanliness levels in rank order.
func CleanlinessValues() []Cleanliness { return append([]Cleanliness(nil), cleanlinessOrder...) }

// PetsValues returns the pet policies in rank order.
func PetsValues() []Pets { return append([]Pets(nil), petsOrder...) }

// RoomTypeValues returns the room types in rank order.
func RoomTypeValues() []RoomType { return append([]RoomType(nil), roomTypeOrder...) }

// SleepScheduleValues returns the sleep schedules in rank order.
func SleepScheduleValues() []SleepSchedule { return append([]SleepSchedule(nil), sleepOrder...) }

// NoiseToleranceValues returns the noise levels in rank order.
func NoiseToleranceValues() []NoiseTolerance { return append([]NoiseTolerance(nil), noiseOrder...) }

// SocialnessValues returns the socialness levels in rank order.
func SocialnessValues() []Socialness { return append([]Socialness(nil), socialOrder...) }
