package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type companyAssignmentStore interface {
	List(ctx context.Context) ([]models.CompanyAssignment, error)
	Exists(ctx context.Context, company, spocEmail string) (bool, error)
	Create(ctx context.Context, a models.CompanyAssignment) error
}

type associateDirectory interface {
	List(ctx context.Context) ([]models.Associate, error)
}

// CompanyService manages the company to SPOC map and the SPOC directory.
type CompanyService struct {
	assignments companyAssignmentStore
	associates  associateDirectory
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(assignments companyAssignmentStore, associates associateDirectory, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{assignments: assignments, associates: associates, validator: validate, logger: logger, now: time.Now}
}

// Companies lists the companies mapped to the caller, sorted and unique.
func (s *CompanyService) Companies(ctx context.Context, claims *models.JWTClaims) (*dto.CompaniesResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	all, err := s.assignments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company map")
	}
	seen := make(map[string]struct{})
	companies := []string{}
	for _, a := range all {
		if !strings.EqualFold(a.SPOCEmail, claims.Email) {
			continue
		}
		if _, dup := seen[a.Company]; dup {
			continue
		}
		seen[a.Company] = struct{}{}
		companies = append(companies, a.Company)
	}
	sort.Strings(companies)
	return &dto.CompaniesResponse{Companies: companies}, nil
}

// Assign maps a company to a SPOC. Repeating an existing pair is a conflict.
func (s *CompanyService) Assign(ctx context.Context, req dto.AssignCompanyRequest, claims *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	company := strings.TrimSpace(req.Company)
	email := strings.ToLower(strings.TrimSpace(req.SPOCEmail))

	exists, err := s.assignments.Exists(ctx, company, email)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check company map")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "company already assigned to this SPOC")
	}

	assignedBy := ""
	if claims != nil {
		assignedBy = claims.Email
	}
	if err := s.assignments.Create(ctx, models.CompanyAssignment{
		Company:    company,
		SPOCEmail:  email,
		AssignedBy: assignedBy,
		AssignedAt: s.now().UTC().Format(TimestampLayout),
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign company")
	}
	s.logger.Info("company assigned", zap.String("company", company), zap.String("spoc", email), zap.String("by", assignedBy))
	return nil
}

// SearchSPOCs returns associates who can act as SPOC whose name or email
// contains q. An empty q lists them all.
func (s *CompanyService) SearchSPOCs(ctx context.Context, q string) ([]dto.SPOCSearchResult, error) {
	associates, err := s.associates.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load associates")
	}
	q = strings.ToLower(strings.TrimSpace(q))
	out := []dto.SPOCSearchResult{}
	for _, a := range associates {
		switch a.Role {
		case models.RoleSPOC, models.RoleCalendarTeam, models.RoleAdmin:
		default:
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) && !strings.Contains(strings.ToLower(a.Email), q) {
			continue
		}
		out = append(out, dto.SPOCSearchResult{Name: a.Name, Email: a.Email, Role: string(a.Role)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
