package service

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// AcademicYearService resolves the academic year used to name placement
// workbooks. A value pinned through the environment cannot be overridden.
type AcademicYearService struct {
	mu      sync.RWMutex
	pinned  string
	current string
	logger  *zap.Logger
}

// NewAcademicYearService builds the resolver. pinned is the ACADEMIC_YEAR
// environment value and may be empty; fallback is used otherwise.
func NewAcademicYearService(pinned, fallback string, logger *zap.Logger) *AcademicYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{pinned: strings.TrimSpace(pinned), current: strings.TrimSpace(fallback), logger: logger}
}

// Current returns the active academic year.
func (s *AcademicYearService) Current() string {
	if s.pinned != "" {
		return s.pinned
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get reports the active academic year and whether it is pinned.
func (s *AcademicYearService) Get() dto.AcademicYearResponse {
	return dto.AcademicYearResponse{AcademicYear: s.Current(), FromEnv: s.pinned != ""}
}

// Set changes the in-process academic year. It is a no-op when pinned.
func (s *AcademicYearService) Set(req dto.SetAcademicYearRequest) (dto.AcademicYearResponse, error) {
	year := strings.TrimSpace(req.AcademicYear)
	if year == "" {
		return dto.AcademicYearResponse{}, appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	if s.pinned != "" {
		s.logger.Info("academic year pinned by environment, ignoring update", zap.String("requested", year))
		return s.Get(), nil
	}
	s.mu.Lock()
	s.current = year
	s.mu.Unlock()
	s.logger.Info("academic year changed", zap.String("academic_year", year))
	return s.Get(), nil
}
