package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/screenpulse/screenpulse/internal/audit"
	"github.com/screenpulse/screenpulse/internal/domain"
)

type DeviceService struct {
	repo  domain.DeviceRepository
	audit *audit.Logger
}

func NewDeviceService(repo domain.DeviceRepository, aud *audit.Logger) *DeviceService {
	return &DeviceService{repo: repo, audit: aud}
}

func (s *DeviceService) Register(ctx context.Context, userID uuid.UUID, name, deviceType string) (domain.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unnamed device"
	}
	deviceType = strings.TrimSpace(deviceType)
	if deviceType == "" {
		deviceType = "desktop"
	}

	d, err := s.repo.CreateDevice(ctx, domain.Device{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Type:   deviceType,
	})
	if err != nil {
		return domain.Device{}, err
	}

	if s.audit != nil {
		s.audit.DeviceRegistered(ctx, userID, d.ID, d.Name)
	}
	return d, nil
}

func (s *DeviceService) List(ctx context.Context, userID uuid.UUID) ([]domain.Device, error) {
	return s.repo.ListDevices(ctx, userID)
}

func (s *DeviceService) Rename(ctx context.Context, userID, deviceID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidInput
	}
	return s.repo.RenameDevice(ctx, userID, deviceID, name)
}

// Delete removes the device; records, events and screenshot metadata cascade
// in the store.
func (s *DeviceService) Delete(ctx context.Context, userID, deviceID uuid.UUID) error {
	if err := s.repo.DeleteDevice(ctx, userID, deviceID); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.DeviceDeleted(ctx, userID, deviceID)
	}
	return nil
}
