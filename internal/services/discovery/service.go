package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/playpal-app/backend/internal/domain/model"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
)

// Fixed ranking weights. Distance dominates, schedule breaks ties.
const (
	weightProximity = 0.4
	weightActivity  = 0.3
	weightSkill     = 0.2
	weightSchedule  = 0.1
)

// skillSpan is the widest meaningful gap between skill levels (1..5).
const skillSpan = 4.0

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	ListCandidates(ctx context.Context, viewerID int64, limit int) ([]model.Profile, error)
}

type Config struct {
	MaxDistanceKM float64
	CandidatePool int
}

func (c Config) Default() Config {
	if c.MaxDistanceKM <= 0 {
		c.MaxDistanceKM = 50
	}
	if c.CandidatePool <= 0 {
		c.CandidatePool = 200
	}
	return c
}

type Candidate struct {
	Profile    model.Profile `json:"profile"`
	DistanceKM float64       `json:"distance_km"`
	Score      float64       `json:"score"`
}

type Service struct {
	profiles ProfileStore
	cfg      Config
}

func NewService(profiles ProfileStore, cfg Config) *Service {
	return &Service{
		profiles: profiles,
		cfg:      cfg.Default(),
	}
}

// Discover ranks candidate partners for the viewer. Already-swiped and
// already-matched users never appear; the store excludes them. Read-only.
func (s *Service) Discover(ctx context.Context, viewerID int64, limit int) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	viewer, err := s.profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get viewer profile: %w", err)
	}

	pool, err := s.profiles.ListCandidates(ctx, viewerID, s.cfg.CandidatePool)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	ranked := make([]Candidate, 0, len(pool))
	for _, profile := range pool {
		distance := haversineKM(viewer.Lat, viewer.Lon, profile.Lat, profile.Lon)
		if distance > s.cfg.MaxDistanceKM {
			continue
		}
		ranked = append(ranked, Candidate{
			Profile:    profile,
			DistanceKM: distance,
			Score:      s.score(viewer, profile, distance),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *Service) score(viewer, candidate model.Profile, distanceKM float64) float64 {
	proximity := 1 - distanceKM/s.cfg.MaxDistanceKM
	if proximity < 0 {
		proximity = 0
	}

	activity := jaccardStrings(viewer.Activities, candidate.Activities)
	schedule := jaccardInts(viewer.PlayDays, candidate.PlayDays)

	skill := 1 - math.Abs(float64(viewer.SkillLevel-candidate.SkillLevel))/skillSpan
	if skill < 0 {
		skill = 0
	}

	return weightProximity*proximity +
		weightActivity*activity +
		weightSkill*skill +
		weightSchedule*schedule
}

func jaccardStrings(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	shared := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func jaccardInts(a, b []int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}

	shared := 0
	union := len(set)
	seen := make(map[int]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
