package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/observability"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MinQueryLength gates lookups: below this nothing is sent to the
	// gateway and the caller gets an empty suggestion list.
	MinQueryLength = 2

	// DefaultSuggestLimit caps how many candidates one lookup returns
	DefaultSuggestLimit = 10

	suggestCacheTTLSeconds = 60
)

// SuggestRequest is one as-you-type directory lookup
type SuggestRequest struct {
	Category providers.DirectoryCategory
	Query    string
	Session  string
	Seq      uint64
	Limit    int
}

// SuggestResponse echoes the request sequence so callers can drop
// out-of-order responses on their side too.
type SuggestResponse struct {
	Seq        uint64                         `json:"seq"`
	Stale      bool                           `json:"stale"`
	Candidates []providers.DirectoryCandidate `json:"candidates"`
}

// DirectoryService resolves typed names into ids for the booking form.
// Responses are fenced per (session, category): once a lookup with a higher
// sequence number arrives, earlier in-flight lookups report themselves stale
// so a slow response never overwrites a newer suggestion list.
type DirectoryService struct {
	personRepo     repositories.PersonRepository
	procedureRepo  repositories.ProcedureRepository
	searchProvider providers.DirectorySearchProvider
	cache          providers.CacheProvider
	metrics        *observability.Metrics

	mu     sync.Mutex
	latest map[string]uint64
}

// NewDirectoryService creates a new directory service. Search provider,
// cache and metrics may all be nil; lookups then hit the gateway directly.
func NewDirectoryService(
	personRepo repositories.PersonRepository,
	procedureRepo repositories.ProcedureRepository,
	searchProvider providers.DirectorySearchProvider,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
) *DirectoryService {
	return &DirectoryService{
		personRepo:     personRepo,
		procedureRepo:  procedureRepo,
		searchProvider: searchProvider,
		cache:          cache,
		metrics:        metrics,
		latest:         make(map[string]uint64),
	}
}

// Suggest returns directory candidates for a partial query
func (s *DirectoryService) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	switch req.Category {
	case providers.DirectoryCategoryPatients, providers.DirectoryCategoryDentists, providers.DirectoryCategoryProcedures:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown directory category %q", req.Category))
	}

	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) < MinQueryLength {
		return &SuggestResponse{Seq: req.Seq, Candidates: []providers.DirectoryCandidate{}}, nil
	}

	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = DefaultSuggestLimit
	}

	s.recordSeq(req.Session, req.Category, req.Seq)

	candidates, err := s.lookup(ctx, req.Category, query, limit)
	if err != nil {
		return nil, err
	}

	if s.isStale(req.Session, req.Category, req.Seq) {
		return &SuggestResponse{Seq: req.Seq, Stale: true, Candidates: []providers.DirectoryCandidate{}}, nil
	}

	return &SuggestResponse{Seq: req.Seq, Candidates: candidates}, nil
}

func (s *DirectoryService) lookup(ctx context.Context, category providers.DirectoryCategory, query string, limit int) ([]providers.DirectoryCandidate, error) {
	cacheKey := fmt.Sprintf("directory:%s:%s:%d", category, strings.ToLower(query), limit)

	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	if s.metrics != nil {
		s.metrics.LookupCount.Add(ctx, 1, metric.WithAttributes(attribute.String("directory.category", string(category))))
	}

	var candidates []providers.DirectoryCandidate
	var err error
	if s.searchProvider != nil {
		candidates, err = s.searchProvider.Suggest(ctx, category, query, limit)
		if err != nil {
			log.Warn().Err(err).Str("category", string(category)).Msg("directory index lookup failed, falling back to gateway")
			candidates, err = s.gatewayLookup(ctx, category, query, limit)
		}
	} else {
		candidates, err = s.gatewayLookup(ctx, category, query, limit)
	}
	if err != nil {
		return nil, err
	}

	if candidates == nil {
		candidates = []providers.DirectoryCandidate{}
	}
	s.cacheSet(ctx, cacheKey, candidates)
	return candidates, nil
}

func (s *DirectoryService) gatewayLookup(ctx context.Context, category providers.DirectoryCategory, query string, limit int) ([]providers.DirectoryCandidate, error) {
	if category == providers.DirectoryCategoryProcedures {
		procedures, err := s.procedureRepo.SearchByName(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		candidates := make([]providers.DirectoryCandidate, 0, len(procedures))
		for _, p := range procedures {
			candidates = append(candidates, providers.DirectoryCandidate{
				ID:              p.ID,
				DisplayName:     p.Name,
				DurationMinutes: p.DurationMinutes,
			})
		}
		return candidates, nil
	}

	role := entities.RolePatient
	if category == providers.DirectoryCategoryDentists {
		role = entities.RoleDoctor
	}

	refs, err := s.personRepo.SearchByName(ctx, query, role, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]providers.DirectoryCandidate, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, providers.DirectoryCandidate{ID: ref.ID, DisplayName: ref.FullName})
	}
	return candidates, nil
}

func (s *DirectoryService) cacheGet(ctx context.Context, key string) ([]providers.DirectoryCandidate, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CacheMissCount.Add(ctx, 1)
		}
		return nil, false
	}

	var candidates []providers.DirectoryCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.CacheHitCount.Add(ctx, 1)
	}
	return candidates, true
}

func (s *DirectoryService) cacheSet(ctx context.Context, key string, candidates []providers.DirectoryCandidate) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, suggestCacheTTLSeconds); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("failed to cache directory suggestions")
	}
}

func fenceKey(session string, category providers.DirectoryCategory) string {
	return session + ":" + string(category)
}

func (s *DirectoryService) recordSeq(session string, category providers.DirectoryCategory, seq uint64) {
	if session == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fenceKey(session, category)
	if seq > s.latest[key] {
		s.latest[key] = seq
	}
}

func (s *DirectoryService) isStale(session string, category providers.DirectoryCategory, seq uint64) bool {
	if session == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq < s.latest[fenceKey(session, category)]
}
