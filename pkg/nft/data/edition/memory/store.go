package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/code-nft/pkg/nft/data/edition"
)

type store struct {
	mu       sync.RWMutex
	lastId   uint64
	byMint   map[string]*edition.Record
	byMaster map[string]map[uint64]*edition.Record
}

// New returns a new in memory edition.Store
func New() edition.Store {
	s := &store{}
	s.reset()
	return s
}

// Put implements edition.Store.Put
func (s *store) Put(_ context.Context, data *edition.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byMint[data.Mint]; ok {
		return edition.ErrAlreadyExists
	}
	if _, ok := s.byMaster[data.MasterMint][data.Edition]; ok {
		return edition.ErrAlreadyExists
	}

	s.lastId++
	data.Id = s.lastId
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}

	cloned := data.Clone()
	s.byMint[cloned.Mint] = &cloned

	editions, ok := s.byMaster[cloned.MasterMint]
	if !ok {
		editions = make(map[uint64]*edition.Record)
		s.byMaster[cloned.MasterMint] = editions
	}
	editions[cloned.Edition] = &cloned

	return nil
}

// Get implements edition.Store.Get
func (s *store) Get(_ context.Context, mint string) (*edition.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byMint[mint]
	if !ok {
		return nil, edition.ErrNotFound
	}

	cloned := record.Clone()
	return &cloned, nil
}

// GetAllByMaster implements edition.Store.GetAllByMaster
func (s *store) GetAllByMaster(_ context.Context, masterMint string) ([]*edition.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	editions := s.byMaster[masterMint]
	if len(editions) == 0 {
		return nil, edition.ErrNotFound
	}

	res := make([]*edition.Record, 0, len(editions))
	for _, record := range editions {
		cloned := record.Clone()
		res = append(res, &cloned)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Edition < res[j].Edition
	})
	return res, nil
}

// MarkBurned implements edition.Store.MarkBurned
func (s *store) MarkBurned(_ context.Context, mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byMint[mint]
	if !ok {
		return edition.ErrNotFound
	}

	// byMaster shares the pointer
	record.State = edition.StateBurned
	return nil
}

// CountByMaster implements edition.Store.CountByMaster
func (s *store) CountByMaster(_ context.Context, masterMint string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.byMaster[masterMint])), nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastId = 0
	s.byMint = make(map[string]*edition.Record)
	s.byMaster = make(map[string]map[uint64]*edition.Record)
}
