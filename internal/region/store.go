package region

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// Persister is the persistence collaborator. Both operations must be
// idempotent; the store reports their errors and never retries.
type Persister interface {
	Save(ctx context.Context, r Region) error
	Delete(ctx context.Context, r Region) error
}

// Limits are the configured region constraints.
type Limits struct {
	MaxRegions           int   // per owner
	MaxArea              int64 // Δx·Δy·Δz
	MaxNameLength        int
	MaxDescriptionLength int
}

// DefaultLimits mirror the stock configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxRegions:           5,
		MaxArea:              15625,
		MaxNameLength:        20,
		MaxDescriptionLength: 100,
	}
}

// Bypass lists the checks a privileged requester may skip.
type Bypass struct {
	Quota   bool
	Area    bool
	Overlap bool
}

// CreateRequest describes a region to create. Empty Name means "generate".
type CreateRequest struct {
	Name        string
	First       model.Location
	Second      model.Location
	Creator     uuid.UUID
	Description string
	Bypass      Bypass
}

// Store is the authoritative in-memory set of regions.
// All mutations go through it; it validates, applies, then persists.
type Store struct {
	mu      sync.RWMutex
	regions map[uuid.UUID]*Region
	limits  Limits
	persist Persister

	newID func() (uuid.UUID, error)
	now   func() time.Time
}

// NewStore creates an empty store. persist may be nil (nothing is saved).
func NewStore(limits Limits, persist Persister) *Store {
	return &Store{
		regions: make(map[uuid.UUID]*Region),
		limits:  limits,
		persist: persist,
		newID:   uuid.NewV4,
		now:     time.Now,
	}
}

// SetLimits replaces limits, e.g. after a config reload.
func (s *Store) SetLimits(l Limits) {
	s.mu.Lock()
	s.limits = l
	s.mu.Unlock()
}

// Limits returns the current limits.
func (s *Store) Limits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Load replaces the set with regions read from persistence.
func (s *Store) Load(regions []*Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = make(map[uuid.UUID]*Region, len(regions))
	for _, r := range regions {
		s.regions[r.id] = r
	}
	slog.Info("regions loaded", "count", len(regions))
}

// Create validates req and adds a new region.
//
// On a *PersistenceError the region has been added and is returned
// together with the error.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*Region, error) {
	if req.First.World != req.Second.World {
		return nil, ErrDifferentWorlds
	}

	s.mu.Lock()

	name := req.Name
	if name == "" {
		generated, err := s.uniqueRandomNameLocked()
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("generating region name: %w", err)
		}
		name = generated
	} else if err := s.checkNameLocked(name); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if err := s.checkDescriptionLocked(req.Description); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	vol := NewVolume(req.First.Block(), req.Second.Block())
	world := req.First.World

	if !req.Bypass.Quota {
		if owned := s.countOwnedLocked(req.Creator); owned >= s.limits.MaxRegions {
			s.mu.Unlock()
			return nil, limitErr(KindQuotaExceeded, int64(s.limits.MaxRegions))
		}
	}

	if !req.Bypass.Area && vol.Area() > s.limits.MaxArea {
		s.mu.Unlock()
		return nil, limitErr(KindAreaExceeded, s.limits.MaxArea)
	}

	if !req.Bypass.Overlap && s.overlapsForeignLocked(vol, world, req.Creator) {
		s.mu.Unlock()
		return nil, ErrOverlap
	}

	id, err := s.newID()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("generating region id: %w", err)
	}

	r := &Region{
		id:          id,
		name:        name,
		creator:     req.Creator,
		world:       world,
		volume:      vol,
		description: req.Description,
		createdAt:   s.now(),
	}
	s.regions[id] = r
	snap := r.Snapshot()
	s.mu.Unlock()

	slog.Info("region created", "region", name, "id", id, "world", world, "creator", req.Creator)

	return r, s.save(ctx, snap)
}

// Rename changes the name of r. The new name is checked against every
// region, r included, case-insensitively.
func (s *Store) Rename(ctx context.Context, r *Region, newName string) error {
	s.mu.Lock()
	if _, ok := s.regions[r.id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if err := s.checkNameLocked(newName); err != nil {
		s.mu.Unlock()
		return err
	}
	old := r.name
	r.name = newName
	snap := r.Snapshot()
	s.mu.Unlock()

	slog.Info("region renamed", "id", r.id, "from", old, "to", newName)
	return s.save(ctx, snap)
}

// SetDescription replaces the description of r.
func (s *Store) SetDescription(ctx context.Context, r *Region, description string) error {
	s.mu.Lock()
	if _, ok := s.regions[r.id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if err := s.checkDescriptionLocked(description); err != nil {
		s.mu.Unlock()
		return err
	}
	r.description = description
	snap := r.Snapshot()
	s.mu.Unlock()

	return s.save(ctx, snap)
}

// Delete removes r. Deletion is irreversible; a persistence failure is
// reported but the region stays removed from memory.
func (s *Store) Delete(ctx context.Context, r *Region) error {
	s.mu.Lock()
	if _, ok := s.regions[r.id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.regions, r.id)
	snap := r.Snapshot()
	s.mu.Unlock()

	slog.Info("region deleted", "region", snap.name, "id", snap.id)

	if s.persist == nil {
		return nil
	}
	if err := s.persist.Delete(ctx, snap); err != nil {
		return &PersistenceError{Op: "delete", RegionID: snap.id.String(), Name: snap.name, Err: err}
	}
	return nil
}

// FindByNameOrID resolves token to a region. A token containing '-' is
// an id, anything else a case-insensitive name. Without bypass only
// regions owned by requester are visible.
func (s *Store) FindByNameOrID(token string, requester uuid.UUID, bypass bool) (*Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := strings.Contains(token, "-")
	for _, r := range s.regions {
		if !bypass && r.creator != requester {
			continue
		}
		if byID {
			if strings.EqualFold(r.id.String(), token) {
				return r, nil
			}
			continue
		}
		if strings.EqualFold(r.name, token) {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

// Get returns the region with id.
func (s *Store) Get(id uuid.UUID) (*Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[id]
	return r, ok
}

// RegionsContaining returns every region of loc's world that contains loc,
// ordered by name.
func (s *Store) RegionsContaining(loc model.Location) []*Region {
	s.mu.RLock()
	var result []*Region
	for _, r := range s.regions {
		if r.Contains(loc) {
			result = append(result, r)
		}
	}
	s.mu.RUnlock()

	sortByName(result)
	return result
}

// OwnedBy returns the regions of owner ordered by name.
func (s *Store) OwnedBy(owner uuid.UUID) []*Region {
	s.mu.RLock()
	var result []*Region
	for _, r := range s.regions {
		if r.creator == owner {
			result = append(result, r)
		}
	}
	s.mu.RUnlock()

	sortByName(result)
	return result
}

// All returns every region ordered by name.
func (s *Store) All() []*Region {
	s.mu.RLock()
	result := make([]*Region, 0, len(s.regions))
	for _, r := range s.regions {
		result = append(result, r)
	}
	s.mu.RUnlock()

	sortByName(result)
	return result
}

// Len returns the number of regions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

func (s *Store) save(ctx context.Context, snap Region) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(ctx, snap); err != nil {
		return &PersistenceError{Op: "save", RegionID: snap.id.String(), Name: snap.name, Err: err}
	}
	return nil
}

// checkNameLocked validates a requested name against every region.
func (s *Store) checkNameLocked(name string) error {
	if s.nameTakenLocked(name) {
		return ErrAlreadyExists
	}
	if !ValidName(name) {
		return ErrIllegalName
	}
	if len(name) > s.limits.MaxNameLength {
		return limitErr(KindNameTooLong, int64(s.limits.MaxNameLength))
	}
	return nil
}

func (s *Store) nameTakenLocked(name string) bool {
	for _, r := range s.regions {
		if strings.EqualFold(r.name, name) {
			return true
		}
	}
	return false
}

func (s *Store) checkDescriptionLocked(description string) error {
	if len([]rune(description)) > s.limits.MaxDescriptionLength {
		return limitErr(KindDescriptionTooLong, int64(s.limits.MaxDescriptionLength))
	}
	return nil
}

func (s *Store) countOwnedLocked(owner uuid.UUID) int {
	n := 0
	for _, r := range s.regions {
		if r.creator == owner {
			n++
		}
	}
	return n
}

// overlapsForeignLocked reports whether vol intersects a region in world
// owned by someone other than owner. Boxes only, so the AABB test gives the
// same answer as walking every voxel.
func (s *Store) overlapsForeignLocked(vol Volume, world string, owner uuid.UUID) bool {
	for _, r := range s.regions {
		if r.creator == owner || r.world != world {
			continue
		}
		if vol.Intersects(r.volume) {
			return true
		}
	}
	return false
}

func (s *Store) uniqueRandomNameLocked() (string, error) {
	for {
		name, err := randomName(RandomNameLength)
		if err != nil {
			return "", err
		}
		if !s.nameTakenLocked(name) {
			return name, nil
		}
	}
}

func sortByName(rs []*Region) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := strings.ToLower(rs[i].name), strings.ToLower(rs[j].name)
		if a != b {
			return a < b
		}
		return rs[i].id.String() < rs[j].id.String()
	})
}
