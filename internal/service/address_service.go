package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"glamgo/internal/model"
	"glamgo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	zipCodePattern = regexp.MustCompile(`^\d{5}$`)
	statePattern   = regexp.MustCompile(`^[A-Z]{2}$`)
)

// addressService implements AddressService.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
		now:         time.Now,
	}
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *addressService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, userID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to get address")
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) GetDefault(ctx context.Context, userID string) (*model.Address, error) {
	address, err := s.addressRepo.GetDefault(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get default address")
		return nil, fmt.Errorf("failed to get default address: %w", err)
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}

// Add validates and stores a new address. The first address becomes the default.
func (s *addressService) Add(ctx context.Context, userID string, form *model.AddressForm) (*model.Address, error) {
	if form == nil {
		return nil, model.NewValidationError("Address is required")
	}

	now := s.now()
	address := &model.Address{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     strings.TrimSpace(form.Label),
		Street:    strings.TrimSpace(form.Street),
		City:      strings.TrimSpace(form.City),
		State:     normaliseState(form.State),
		ZipCode:   strings.TrimSpace(form.ZipCode),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := validateAddress(address); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("invalid address")
		return nil, err
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create address")
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address added")

	return address, nil
}

// Update applies the non-nil fields of update.
func (s *addressService) Update(ctx context.Context, userID string, id uuid.UUID, update *model.AddressUpdate) (*model.Address, error) {
	address, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update == nil {
		return address, nil
	}

	if update.Label != nil {
		address.Label = strings.TrimSpace(*update.Label)
	}
	if update.Street != nil {
		address.Street = strings.TrimSpace(*update.Street)
	}
	if update.City != nil {
		address.City = strings.TrimSpace(*update.City)
	}
	if update.State != nil {
		address.State = normaliseState(*update.State)
	}
	if update.ZipCode != nil {
		address.ZipCode = strings.TrimSpace(*update.ZipCode)
	}

	if err := validateAddress(address); err != nil {
		s.logger.Warn().Err(err).Str("address_id", id.String()).Msg("invalid address update")
		return nil, err
	}

	address.UpdatedAt = s.now()
	if err := s.addressRepo.Update(ctx, address); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to update address")
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return address, nil
}

func (s *addressService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, userID, id); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("address_id", id.String()).Msg("address deleted")
	return nil
}

func (s *addressService) SetDefault(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.addressRepo.SetDefault(ctx, userID, id); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to set default address")
		return fmt.Errorf("failed to set default address: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("address_id", id.String()).Msg("default address changed")
	return nil
}

func normaliseState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

func validateAddress(a *model.Address) error {
	switch {
	case a.Label == "":
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidAddress, "Label is required")
	case a.Street == "":
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidAddress, "Street address is required")
	case a.City == "":
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidAddress, "City is required")
	case !statePattern.MatchString(a.State):
		return model.ErrInvalidState
	case !zipCodePattern.MatchString(a.ZipCode):
		return model.ErrInvalidZipCode
	}
	return nil
}
