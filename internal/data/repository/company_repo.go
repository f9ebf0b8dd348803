package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindAll(ctx context.Context, limit, offset int, name *string) ([]*entity.Company, error)
	CountAll(ctx context.Context, name *string) (int64, error)
	Update(ctx context.Context, company *entity.Company) error
	// Delete removes the company and every booking made with it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCompanyRepository(db database.PgxIface, log *zap.Logger) CompanyRepository {
	return &companyRepository{
		db:  db,
		log: log.With(zap.String("repository", "company")),
	}
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, address, website, description, telephone,
		                       created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Address,
		company.Website,
		company.Description,
		company.Telephone,
		company.CreatedAt,
		company.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		r.log.Error("Failed to create company",
			zap.Error(err),
			zap.String("name", company.Name),
		)
		return storeError(err, "create company %s", company.Name)
	}

	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `
		SELECT id, name, address, website, description, telephone, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	company, err := scanCompany(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find company by ID",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return nil, storeError(err, "find company by ID %s", id)
	}

	return company, nil
}

// FindAll lists companies by name. A non-nil name filters case-insensitively.
func (r *companyRepository) FindAll(ctx context.Context, limit, offset int, name *string) ([]*entity.Company, error) {
	where, args := companyNameFilter(name)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, address, website, description, telephone, created_at, updated_at
		FROM companies`)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to get companies",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, storeError(err, "find all companies")
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			r.log.Error("Failed to scan company row", zap.Error(err))
			return nil, storeError(err, "scan company row")
		}
		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err, "iterate company rows")
	}

	return companies, nil
}

func (r *companyRepository) CountAll(ctx context.Context, name *string) (int64, error) {
	where, args := companyNameFilter(name)

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&count)
	if err != nil {
		r.log.Error("Database error counting companies", zap.Error(err))
		return 0, storeError(err, "count companies")
	}

	return count, nil
}

func (r *companyRepository) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, address = $3, website = $4, description = $5,
		    telephone = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Address,
		company.Website,
		company.Description,
		company.Telephone,
		company.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		r.log.Error("Failed to update company",
			zap.Error(err),
			zap.String("company_id", company.ID.String()),
		)
		return storeError(err, "update company %s", company.ID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError(err, "begin delete company")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE company_id = $1`, id); err != nil {
		r.log.Error("Failed to delete company bookings",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return storeError(err, "delete bookings of company %s", id)
	}

	result, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete company",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return storeError(err, "delete company %s", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError(err, "commit delete company")
	}

	r.log.Info("Company deleted", zap.String("company_id", id.String()))
	return nil
}

func companyNameFilter(name *string) (string, []any) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", nil
	}
	return " WHERE name ILIKE $1", []any{"%" + strings.TrimSpace(*name) + "%"}
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.Website,
		&c.Description,
		&c.Telephone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
