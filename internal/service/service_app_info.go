package service

import (
	"context"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

type appInfoService struct {
	info models.BuildInfo

	logger *logger.Logger
}

// NewAppInfoService returns the service reporting info. The version must be
// set, either by linker flags or by "N/A" defaults from [models.NewBuildInfo].
func NewAppInfoService(info models.BuildInfo, logger *logger.Logger) (AppInfoService, error) {
	if info.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		info:   info,
		logger: logger,
	}, nil
}

func (s *appInfoService) GetBuildInfo(ctx context.Context) models.BuildInfo {
	return s.info
}
