package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// ─────────────────────────────────────────────
// NewAppInfoService
// ─────────────────────────────────────────────

func TestNewAppInfoService_Success(t *testing.T) {
	svc, err := NewAppInfoService(models.NewBuildInfo("1.0.0", "", ""), logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestNewAppInfoService_EmptyVersion_ReturnsError(t *testing.T) {
	svc, err := NewAppInfoService(models.BuildInfo{}, logger.Nop())

	assert.Nil(t, svc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionIsNotSpecified))
}

// ─────────────────────────────────────────────
// GetBuildInfo
// ─────────────────────────────────────────────

func TestGetBuildInfo_ReturnsConfiguredInfo(t *testing.T) {
	info := models.NewBuildInfo("3.1.4", "2026-01-02", "abc123")
	svc, err := NewAppInfoService(info, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, info, svc.GetBuildInfo(context.Background()))
}

func TestGetBuildInfo_DefaultsAreNA(t *testing.T) {
	svc, err := NewAppInfoService(models.NewBuildInfo("", "", ""), logger.Nop())
	require.NoError(t, err)

	got := svc.GetBuildInfo(context.Background())
	assert.Equal(t, "N/A", got.Version)
	assert.Equal(t, "N/A", got.Commit)
}
