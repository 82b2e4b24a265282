package gateway

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elvis-ci/Riviera/models"
)

// PostgresGateway serves profile rows and the fragrance catalog straight
// from Postgres for self-hosted deployments. It covers the data plane only;
// authentication always goes through the hosted auth API.
type PostgresGateway struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the profiles and fragrances tables.
func OpenPostgres(dsn string) (*PostgresGateway, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Fragrance{}); err != nil {
		return nil, err
	}
	return &PostgresGateway{db: db}, nil
}

func (g *PostgresGateway) SelectProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := g.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRowNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return &profile, nil
}

func (g *PostgresGateway) InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := g.db.WithContext(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: profile already exists", ErrValidationRejected)
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return profile, nil
}

func (g *PostgresGateway) UpdateProfile(ctx context.Context, id string, partial map[string]any) (*models.Profile, error) {
	result := g.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(partial)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRowNotFound
	}
	return g.SelectProfile(ctx, id)
}

func (g *PostgresGateway) GetFragrances(ctx context.Context) ([]models.Fragrance, error) {
	var rows []models.Fragrance
	if err := g.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return rows, nil
}

// SeedFragrances fills an empty fragrances table with the sample catalog so
// a fresh self-hosted instance has something to sell.
func (g *PostgresGateway) SeedFragrances() error {
	var count int64
	if err := g.db.Model(&models.Fragrance{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return g.db.Create(SampleCatalog(50)).Error
}

// Close releases the underlying connection pool.
func (g *PostgresGateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
