package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// AssociatesSheet lists staff accounts.
const AssociatesSheet = "Associates"

// Associate columns.
const (
	ColEmail        = "Email"
	ColRole         = "Role"
	ColPasswordHash = "Password Hash"
)

// AssociateHeaders is the Associates header row.
var AssociateHeaders = []string{ColName, ColEmail, ColRole, ColPasswordHash}

// AssociateRepository reads staff accounts from the Associates sheet.
type AssociateRepository struct {
	table *sheetTable
}

// NewAssociateRepository constructs the repository.
func NewAssociateRepository(store TableStore, workbookID string) *AssociateRepository {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: AssociatesSheet}
	return &AssociateRepository{table: newSheetTable(store, ref, AssociateHeaders)}
}

// EnsureSchema creates the sheet or appends missing columns.
func (r *AssociateRepository) EnsureSchema(ctx context.Context) error {
	return r.table.ensure(ctx)
}

// List returns every associate, served from the cache when fresh.
func (r *AssociateRepository) List(ctx context.Context) ([]models.Associate, error) {
	snap, err := r.table.read(ctx, true)
	if err != nil {
		return nil, err
	}
	associates := make([]models.Associate, 0, len(snap.rows))
	for i := 1; i < len(snap.rows); i++ {
		row := snap.rows[i]
		email := snap.value(row, ColEmail)
		if email == "" {
			continue
		}
		associates = append(associates, models.Associate{
			Row:          i,
			Name:         snap.value(row, ColName),
			Email:        email,
			Role:         models.UserRole(strings.ToUpper(snap.value(row, ColRole))),
			PasswordHash: snap.value(row, ColPasswordHash),
		})
	}
	return associates, nil
}

// FindByEmail returns the associate with email (case-insensitive), or nil.
func (r *AssociateRepository) FindByEmail(ctx context.Context, email string) (*models.Associate, error) {
	associates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range associates {
		if strings.EqualFold(associates[i].Email, strings.TrimSpace(email)) {
			return &associates[i], nil
		}
	}
	return nil, nil
}

// Create appends an associate.
func (r *AssociateRepository) Create(ctx context.Context, a models.Associate) error {
	if err := r.table.append(ctx, []Change{
		{Column: ColName, Value: a.Name},
		{Column: ColEmail, Value: a.Email},
		{Column: ColRole, Value: string(a.Role)},
		{Column: ColPasswordHash, Value: a.PasswordHash},
	}); err != nil {
		return err
	}
	r.table.invalidate(ctx)
	return nil
}
