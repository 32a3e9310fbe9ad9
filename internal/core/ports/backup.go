package ports

import (
	"context"

	"go.trai.ch/notekeep/internal/core/domain"
)

// BackupService runs and inspects backup cycles for the configured files.
//
//go:generate mockgen -source=backup.go -destination=mocks/mock_backup.go -package=mocks
type BackupService interface {
	// Backup runs one backup cycle.
	Backup(ctx context.Context) (*domain.CycleResult, error)
	// Status describes the backup file and its snapshots.
	Status(ctx context.Context) (*domain.BackupStatus, error)
}
