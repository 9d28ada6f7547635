package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/metrics"
	"go.uber.org/zap"
)

// FallbackSequence is used when existing numbers cannot be read
const FallbackSequence = "0001"

// NumberReader lists stored quotation numbers that start with prefix + "-"
type NumberReader interface {
	ListQuotationNumbers(ctx context.Context, prefix string) ([]string, error)
}

// NumberSequenceService allocates quotation numbers.
//
// Format: {BRAND}-{TERRITORY}-{YEAR}-{SEQUENCE}
// Example: EC-MN-2025-0004
//
// The next sequence is max(existing)+1 over every stored number with the same
// prefix. Nothing is reserved, so two agents generating at the same moment can
// receive the same number.
type NumberSequenceService struct {
	reader  NumberReader
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(reader NumberReader, m *metrics.Metrics, logger *zap.Logger) *NumberSequenceService {
	return &NumberSequenceService{
		reader:  reader,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for the year segment
func (s *NumberSequenceService) WithClock(now func() time.Time) *NumberSequenceService {
	s.now = now
	return s
}

// BuildPrefix returns "{BRAND}-{TERRITORY}-{YEAR}"
func BuildPrefix(brand domain.Brand, territoryCode string, year int) (string, error) {
	brandPrefix := domain.GetBrandPrefix(brand)
	if brandPrefix == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidBrand, brand)
	}
	territory := auth.TerritoryPrefix(territoryCode)
	if territory == "" {
		return "", ErrMissingTerritory
	}
	return fmt.Sprintf("%s-%s-%04d", brandPrefix, territory, year), nil
}

// ParseSequence extracts the trailing "-" segment of number as a positive integer
func ParseSequence(number string) (int, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(number[idx+1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextSequenceFrom returns max+1 over the parseable sequences, zero-padded to 4 digits
func NextSequenceFrom(numbers []string) string {
	highest := 0
	for _, number := range numbers {
		if n, ok := ParseSequence(number); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%04d", highest+1)
}

// NextSequence returns the next 4 digit sequence for prefix.
// A failed read is logged and yields FallbackSequence.
func (s *NumberSequenceService) NextSequence(ctx context.Context, prefix string) string {
	seq, _ := s.nextSequence(ctx, prefix)
	return seq
}

func (s *NumberSequenceService) nextSequence(ctx context.Context, prefix string) (string, bool) {
	numbers, err := s.reader.ListQuotationNumbers(ctx, prefix)
	if err != nil {
		s.logger.Warn("failed to read existing quotation numbers, using fallback sequence",
			zap.String("prefix", prefix),
			zap.String("fallback", FallbackSequence),
			zap.Error(err))
		return FallbackSequence, true
	}
	return NextSequenceFrom(numbers), false
}

// GetQuotationNumbers exposes every stored number for prefix
func (s *NumberSequenceService) GetQuotationNumbers(ctx context.Context, prefix string) (*domain.QuotationNumbersResponse, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: prefix is required", ErrInvalidInput)
	}
	numbers, err := s.reader.ListQuotationNumbers(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if numbers == nil {
		numbers = []string{}
	}
	return &domain.QuotationNumbersResponse{QuotationNumbers: numbers}, nil
}

// Generate allocates the next quotation number for brand within territoryCode.
// The caller's own territory is used when territoryCode is empty.
func (s *NumberSequenceService) Generate(ctx context.Context, brand domain.Brand, territoryCode string) (*domain.QuotationNumberDTO, error) {
	if territoryCode == "" {
		if userCtx, ok := auth.FromContext(ctx); ok {
			territoryCode = userCtx.TerritoryCode
		}
	}

	prefix, err := BuildPrefix(brand, territoryCode, s.now().Year())
	if err != nil {
		return nil, err
	}

	seq, fallback := s.nextSequence(ctx, prefix)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	number := prefix + "-" + seq
	s.metrics.QuotationNumberGenerated(string(brand), fallback)

	s.logger.Info("generated quotation number",
		zap.String("number", number),
		zap.String("brand", string(brand)),
		zap.Bool("fallback", fallback))

	return &domain.QuotationNumberDTO{
		QuotationNumber: number,
		Prefix:          prefix,
		Sequence:        seq,
	}, nil
}

// ValidateQuotationNumber checks number matches {BRAND}-{TT}-{YYYY}-{NNNN} for a known brand
func ValidateQuotationNumber(number string) bool {
	parts := strings.Split(number, "-")
	if len(parts) != 4 {
		return false
	}
	known := false
	for _, b := range domain.AllBrands() {
		if domain.GetBrandPrefix(b) == parts[0] {
			known = true
			break
		}
	}
	if !known || len(parts[1]) == 0 || len(parts[1]) > 2 || len(parts[2]) != 4 || len(parts[3]) < 4 {
		return false
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return false
	}
	_, ok := ParseSequence(number)
	return ok
}
