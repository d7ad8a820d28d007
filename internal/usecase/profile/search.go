package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	searchCachePrefix = "midwife_search:"
	searchCacheTTL    = time.Minute
	defaultRadiusKm   = 30
	maxSearchRadiusKm = 200
)

var searchPostalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)

// Cache описывает кэш с TTL, его реализует service.CacheService.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
	InvalidateByPrefix(prefix string)
}

type SearchInput struct {
	PostalCode string
	RadiusKm   int
	Limit      int
	Offset     int
}

// SearchMidwivesUseCase ищет проверенных акушерок, чей радиус выезда покрывает индекс клиента.
type SearchMidwivesUseCase struct {
	profileRepo repository.ProfileRepository
	cache       Cache
}

func NewSearchMidwivesUseCase(profileRepo repository.ProfileRepository, cache Cache) *SearchMidwivesUseCase {
	return &SearchMidwivesUseCase{profileRepo: profileRepo, cache: cache}
}

func (uc *SearchMidwivesUseCase) Execute(ctx context.Context, input SearchInput) ([]repository.MidwifeSearchResult, error) {
	search := repository.MidwifeSearch{
		PostalCode: strings.TrimSpace(input.PostalCode),
		RadiusKm:   input.RadiusKm,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if !searchPostalCodeRe.MatchString(search.PostalCode) {
		return nil, apperror.New(apperror.ErrCodeValidation, "почтовый индекс должен состоять из 5 цифр")
	}
	if search.RadiusKm <= 0 {
		search.RadiusKm = defaultRadiusKm
	}
	if search.RadiusKm > maxSearchRadiusKm {
		search.RadiusKm = maxSearchRadiusKm
	}

	if uc.cache == nil {
		return uc.profileRepo.SearchMidwives(ctx, search)
	}

	key := fmt.Sprintf("%s%s:%d:%d:%d", searchCachePrefix, search.PostalCode, search.RadiusKm, search.Limit, search.Offset)
	value, err := uc.cache.GetOrSet(ctx, key, searchCacheTTL, func() (interface{}, error) {
		return uc.profileRepo.SearchMidwives(ctx, search)
	})
	if err != nil {
		return nil, err
	}
	results, _ := value.([]repository.MidwifeSearchResult)
	return results, nil
}
