package store

import (
	"errors"
	"time"

	"github.com/collabtok/collabtok/internal/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the relational store with the queries the auth and sync flows
// need. Lookups return (nil, nil) when no row matches; concurrency control
// (upsert atomicity, the unique open_id constraint) is delegated to the
// database.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// PlaceholderEmail synthesizes an email for a new account, since TikTok does
// not supply one.
func PlaceholderEmail(openID string) string {
	return openID + "@tiktok.placeholder"
}

// FindAccountByOpenID looks up an account by its provider identity.
func (s *Store) FindAccountByOpenID(openID string) (*models.Account, error) {
	var acc models.Account
	err := s.db.Where("open_id = ?", openID).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// CreateAccount inserts a new account with a fresh UUID.
func (s *Store) CreateAccount(openID, email string) (*models.Account, error) {
	acc := models.Account{
		ID:     uuid.New().String(),
		OpenID: openID,
		Email:  email,
	}
	if err := s.db.Create(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpsertProfile overwrites the profile row for its account.
func (s *Store) UpsertProfile(p *models.Profile) error {
	p.UpdatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		UpdateAll: true,
	}).Create(p).Error
}

// GetProfile returns the stored profile for an account.
func (s *Store) GetProfile(accountID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.Where("account_id = ?", accountID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AppendStats inserts a stats snapshot. Snapshots are append-only.
func (s *Store) AppendStats(snap *models.StatsSnapshot) error {
	return s.db.Create(snap).Error
}

// LatestStats returns the newest snapshot for an account.
func (s *Store) LatestStats(accountID string) (*models.StatsSnapshot, error) {
	var snap models.StatsSnapshot
	err := s.db.Where("account_id = ?", accountID).
		Order("recorded_at DESC, id DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// UpsertToken overwrites the token record for its account.
func (s *Store) UpsertToken(tok *models.TokenRecord) error {
	tok.UpdatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		UpdateAll: true,
	}).Create(tok).Error
}

// GetToken returns the token record for an account.
func (s *Store) GetToken(accountID string) (*models.TokenRecord, error) {
	var tok models.TokenRecord
	err := s.db.Where("account_id = ?", accountID).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// TokenAccountIDs lists every account id holding a token record, in a stable
// order for the batch driver.
func (s *Store) TokenAccountIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.TokenRecord{}).
		Order("account_id").
		Pluck("account_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
