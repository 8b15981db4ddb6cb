package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/ItsNaunas/E-CTRL-sub001/config"
	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

// Not-found conditions are sentinels so callers can branch with
// errors.Is. A missing report is a valid pipeline state (welcome
// e-mail path), never a 500.
var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrReportNotFound = errors.New("report not found")
)

// Database wraps the MySQL connection and owns the lead/report store.
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection from config.
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: db}, nil
}

// NewDatabaseFromConn wraps an existing connection; used by tests.
func NewDatabaseFromConn(db *sql.DB) *Database {
	return &Database{db: db}
}

// GetDB exposes the underlying connection for collaborators that need it.
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateTables creates the lead and report tables if they don't exist.
func (d *Database) CreateTables() error {
	leads := `
	CREATE TABLE IF NOT EXISTS leads (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(320),
		name VARCHAR(256),
		audit_type VARCHAR(16) NOT NULL,
		asin VARCHAR(10),
		url TEXT,
		category VARCHAR(256),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_leads_email (email)
	)`
	if _, err := d.db.Exec(leads); err != nil {
		return fmt.Errorf("failed to create leads table: %w", err)
	}

	reports := `
	CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR(36) PRIMARY KEY,
		lead_id VARCHAR(36) NOT NULL,
		mode VARCHAR(16) NOT NULL,
		title VARCHAR(512) NOT NULL,
		score INT NOT NULL,
		highlights JSON,
		recommendations JSON,
		detailed_analysis JSON,
		listing JSON,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_reports_lead (lead_id, created_at)
	)`
	if _, err := d.db.Exec(reports); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	return nil
}

// CreateLead inserts a new lead with a generated identifier and
// returns it. Email stays empty until the capture flow runs.
func (d *Database) CreateLead(ctx context.Context, input *models.NormalizedInput) (*models.Lead, error) {
	lead := &models.Lead{
		ID:        uuid.New().String(),
		AuditType: input.Mode,
		ASIN:      input.ASIN,
		URL:       input.ProductURL,
		Category:  input.Category,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err := d.db.ExecContext(ctx,
		"INSERT INTO leads (id, audit_type, asin, url, category) VALUES (?, ?, ?, ?, ?)",
		lead.ID, string(lead.AuditType), lead.ASIN, lead.URL, lead.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}
	return lead, nil
}

// GetLead retrieves a lead by ID.
func (d *Database) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	var lead models.Lead
	var email, name, asin, url, category sql.NullString
	var auditType string

	err := d.db.QueryRowContext(ctx,
		"SELECT id, email, name, audit_type, asin, url, category, created_at, updated_at FROM leads WHERE id = ?",
		leadID).Scan(&lead.ID, &email, &name, &auditType, &asin, &url, &category, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to query lead: %w", err)
	}

	lead.Email = email.String
	lead.Name = name.String
	lead.AuditType = models.AuditMode(auditType)
	lead.ASIN = asin.String
	lead.URL = url.String
	lead.Category = category.String
	return &lead, nil
}

// UpdateLeadContact sets the contact e-mail and display name on an
// existing lead. Concurrent updates are last-write-wins; that race is
// accepted at the store level.
func (d *Database) UpdateLeadContact(ctx context.Context, leadID, email, name string) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE leads SET email = ?, name = ? WHERE id = ?",
		email, name, leadID)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// MySQL reports 0 for no-op updates too, so confirm existence.
		var exists bool
		if err := d.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM leads WHERE id = ?)", leadID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to confirm lead: %w", err)
		}
		if !exists {
			return ErrLeadNotFound
		}
	}
	return nil
}

// SaveReport persists one analysis result for a lead. Reports are
// immutable; nothing updates a row after this insert.
func (d *Database) SaveReport(ctx context.Context, leadID string, mode models.AuditMode, result *models.AnalysisResult) (*models.Report, error) {
	report := &models.Report{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Mode:      mode,
		Result:    *result,
		CreatedAt: time.Now(),
	}

	highlights, err := json.Marshal(result.Highlights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode highlights: %w", err)
	}
	recommendations, err := json.Marshal(result.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	detailed, err := json.Marshal(result.DetailedAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detailed analysis: %w", err)
	}
	var listing []byte
	if result.Listing != nil {
		if listing, err = json.Marshal(result.Listing); err != nil {
			return nil, fmt.Errorf("failed to encode listing: %w", err)
		}
	}

	_, err = d.db.ExecContext(ctx,
		"INSERT INTO reports (id, lead_id, mode, title, score, highlights, recommendations, detailed_analysis, listing) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		report.ID, leadID, string(mode), result.Title, result.Score, highlights, recommendations, detailed, listing)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return report, nil
}

// GetLatestReportForLead returns the most recently created report for
// a lead, or ErrReportNotFound.
func (d *Database) GetLatestReportForLead(ctx context.Context, leadID string) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, lead_id, mode, title, score, highlights, recommendations, detailed_analysis, listing, created_at
		 FROM reports WHERE lead_id = ? ORDER BY created_at DESC LIMIT 1`, leadID)
	return scanReport(row)
}

// GetLatestReportByEmail returns the most recent report across all
// leads captured with the given e-mail, or ErrReportNotFound.
func (d *Database) GetLatestReportByEmail(ctx context.Context, email string) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT r.id, r.lead_id, r.mode, r.title, r.score, r.highlights, r.recommendations, r.detailed_analysis, r.listing, r.created_at
		 FROM reports r JOIN leads l ON l.id = r.lead_id
		 WHERE l.email = ? ORDER BY r.created_at DESC LIMIT 1`, email)
	return scanReport(row)
}

func scanReport(row *sql.Row) (*models.Report, error) {
	var report models.Report
	var mode string
	var highlights, recommendations, detailed, listing []byte

	err := row.Scan(&report.ID, &report.LeadID, &mode, &report.Result.Title, &report.Result.Score,
		&highlights, &recommendations, &detailed, &listing, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	report.Mode = models.AuditMode(mode)
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &report.Result.Highlights); err != nil {
			return nil, fmt.Errorf("failed to decode highlights: %w", err)
		}
	}
	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &report.Result.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	if len(detailed) > 0 {
		if err := json.Unmarshal(detailed, &report.Result.DetailedAnalysis); err != nil {
			return nil, fmt.Errorf("failed to decode detailed analysis: %w", err)
		}
	}
	if len(listing) > 0 {
		report.Result.Listing = &models.ListingPack{}
		if err := json.Unmarshal(listing, report.Result.Listing); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
	}
	if report.Result.Highlights == nil {
		report.Result.Highlights = []string{}
	}
	if report.Result.Recommendations == nil {
		report.Result.Recommendations = []string{}
	}
	return &report, nil
}
