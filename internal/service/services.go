package service

import (
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// Services groups the system-of-record services.
type Services struct {
	RecordService  RecordService
	AppInfoService AppInfoService
}

// NewServices builds the services over storages. Records are validated
// before they reach the repository.
func NewServices(storages *store.Storages, info models.BuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(info, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	records := NewRecordService(storages.RecordRepository, utils.NewUUIDGenerator(), logger)

	return &Services{
		RecordService:  NewRecordValidationService().Wrap(records),
		AppInfoService: appInfo,
	}, nil
}
