// Package db implements the training entity store on top of GORM. Every row
// carries a version counter; updates only succeed against the version that was
// read, so concurrent read-modify-write cycles surface as ErrConflict.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/ehs/internal/training/db/migrations"
	dbmodels "github.com/gartstein/ehs/internal/training/db/models"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the SQLite database file; empty means a private in-memory database.
	Path string
}

// NewRepository opens the store described by cfg. PostgreSQL schemas are
// managed by the embedded goose migrations, SQLite schemas by AutoMigrate.
func NewRepository(cfg *Config) (*Repository, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(cfg.Path)
	case DriverPostgres, "":
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewInMemoryRepository returns a store backed by a private in-memory SQLite database.
func NewInMemoryRepository() (*Repository, error) {
	return openSQLite("")
}

func openPostgres(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func openSQLite(path string) (*Repository, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// every new connection to :memory: would see an empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(dbmodels.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &Repository{db: db}, nil
}

// partialIndexes mirror the partial unique indexes of the goose migrations,
// which AutoMigrate cannot express.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_one_accepted ON proposals (opportunity_id) WHERE status = 'Accepted'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_one_active_per_vendor ON proposals (opportunity_id, vendor_id) WHERE status IN ('Pending', 'Accepted')`,
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func (r *Repository) create(ctx context.Context, row interface{}) error {
	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		// a duplicate is deterministic, retrying it cannot succeed
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate key", e.ErrValidation)
		}
		return result.Error
	}
	return nil
}

func (r *Repository) get(ctx context.Context, row interface{}, id uuid.UUID) error {
	result := r.db.WithContext(ctx).First(row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return e.ErrNotFound
		}
		return result.Error
	}
	return nil
}

// update writes row only if the stored version still equals expected.
// row.Version must already hold the new version.
func (r *Repository) update(ctx context.Context, row interface{}, id uuid.UUID, expected int) error {
	result := r.db.WithContext(ctx).Model(row).
		Select("*").
		Omit("id").
		Where("id = ? AND version = ?", id, expected).
		Updates(row)
	if result.Error != nil {
		// a unique index lost to a concurrent writer; a re-read sees the winner
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", e.ErrConflict, result.Error)
		}
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(row).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return e.ErrNotFound
	}
	return fmt.Errorf("%w: stale version %d", e.ErrConflict, expected)
}

func (r *Repository) delete(ctx context.Context, row interface{}, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(row, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// Trainings

func (r *Repository) CreateTraining(ctx context.Context, t *models.Training) error {
	t.Version = 1
	row := trainingToRow(t)
	if err := r.create(ctx, row); err != nil {
		return err
	}
	t.CreatedAt, t.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	var row dbmodels.Training
	if err := r.get(ctx, &row, id); err != nil {
		return nil, err
	}
	return trainingFromRow(&row), nil
}

func (r *Repository) UpdateTraining(ctx context.Context, t *models.Training) error {
	row := trainingToRow(t)
	row.Version = t.Version + 1
	if err := r.update(ctx, row, t.ID, t.Version); err != nil {
		return err
	}
	t.Version, t.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *Repository) DeleteTraining(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, &dbmodels.Training{}, id)
}

func (r *Repository) ListTrainings(ctx context.Context) ([]models.Training, error) {
	var rows []dbmodels.Training
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Training, len(rows))
	for i := range rows {
		out[i] = *trainingFromRow(&rows[i])
	}
	return out, nil
}

// Opportunities

func (r *Repository) CreateOpportunity(ctx context.Context, o *models.Opportunity) error {
	o.Version = 1
	row := opportunityToRow(o)
	if err := r.create(ctx, row); err != nil {
		return err
	}
	o.CreatedAt, o.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var row dbmodels.Opportunity
	if err := r.get(ctx, &row, id); err != nil {
		return nil, err
	}
	return opportunityFromRow(&row), nil
}

func (r *Repository) UpdateOpportunity(ctx context.Context, o *models.Opportunity) error {
	row := opportunityToRow(o)
	row.Version = o.Version + 1
	if err := r.update(ctx, row, o.ID, o.Version); err != nil {
		return err
	}
	o.Version, o.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

func (r *Repository) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	var rows []dbmodels.Opportunity
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Opportunity, len(rows))
	for i := range rows {
		out[i] = *opportunityFromRow(&rows[i])
	}
	return out, nil
}

// Proposals

func (r *Repository) CreateProposal(ctx context.Context, p *models.Proposal) error {
	p.Version = 1
	return r.create(ctx, proposalToRow(p))
}

func (r *Repository) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var row dbmodels.Proposal
	if err := r.get(ctx, &row, id); err != nil {
		return nil, err
	}
	return proposalFromRow(&row), nil
}

func (r *Repository) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	row := proposalToRow(p)
	row.Version = p.Version + 1
	if err := r.update(ctx, row, p.ID, p.Version); err != nil {
		return err
	}
	p.Version = row.Version
	return nil
}

// ListProposals returns the proposals of one opportunity, or all proposals
// when opportunityID is uuid.Nil, in submission order.
func (r *Repository) ListProposals(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error) {
	q := r.db.WithContext(ctx).Order("submitted_at ASC")
	if opportunityID != uuid.Nil {
		q = q.Where("opportunity_id = ?", opportunityID)
	}
	var rows []dbmodels.Proposal
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Proposal, len(rows))
	for i := range rows {
		out[i] = *proposalFromRow(&rows[i])
	}
	return out, nil
}

// Sessions

func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	s.Version = 1
	row := sessionToRow(s)
	if err := r.create(ctx, row); err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var row dbmodels.Session
	if err := r.get(ctx, &row, id); err != nil {
		return nil, err
	}
	return sessionFromRow(&row), nil
}

func (r *Repository) UpdateSession(ctx context.Context, s *models.Session) error {
	row := sessionToRow(s)
	row.Version = s.Version + 1
	if err := r.update(ctx, row, s.ID, s.Version); err != nil {
		return err
	}
	s.Version, s.UpdatedAt = row.Version, row.UpdatedAt
	return nil
}

// SessionFilter narrows ListSessions by foreign key. Zero fields match everything.
type SessionFilter struct {
	OpportunityID uuid.UUID
	TrainingID    uuid.UUID
}

func (r *Repository) ListSessions(ctx context.Context, f SessionFilter) ([]models.Session, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if f.OpportunityID != uuid.Nil {
		q = q.Where("opportunity_id = ?", f.OpportunityID)
	}
	if f.TrainingID != uuid.Nil {
		q = q.Where("training_id = ?", f.TrainingID)
	}
	var rows []dbmodels.Session
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Session, len(rows))
	for i := range rows {
		out[i] = *sessionFromRow(&rows[i])
	}
	return out, nil
}

// Vendors

func (r *Repository) CreateVendor(ctx context.Context, v *models.Vendor) error {
	v.Version = 1
	return r.create(ctx, vendorToRow(v))
}

func (r *Repository) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var row dbmodels.Vendor
	if err := r.get(ctx, &row, id); err != nil {
		return nil, err
	}
	return vendorFromRow(&row), nil
}

func (r *Repository) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	row := vendorToRow(v)
	row.Version = v.Version + 1
	if err := r.update(ctx, row, v.ID, v.Version); err != nil {
		return err
	}
	v.Version = row.Version
	return nil
}

func (r *Repository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var rows []dbmodels.Vendor
	if err := r.db.WithContext(ctx).Order("registration_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Vendor, len(rows))
	for i := range rows {
		out[i] = *vendorFromRow(&rows[i])
	}
	return out, nil
}

// WithTransaction runs fn against a repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Exec runs a raw statement, for maintenance such as truncating tables in tests.
func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	return r.db.WithContext(ctx).Exec(query, params...).Error
}

func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
