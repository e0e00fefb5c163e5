package services

import (
	"context"
	"errors"
	"strings"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/session"
	"github.com/gobarber/gobarber-client/internal/validation"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"go.uber.org/zap"
)

type ProfileService struct {
	gateway  ProfileGateway
	sessions SessionUpdater
}

func NewProfileService(gateway ProfileGateway, sessions SessionUpdater) *ProfileService {
	return &ProfileService{
		gateway:  gateway,
		sessions: sessions,
	}
}

// UpdateProfile sends the filled fields to the API and feeds the returned
// profile into the live session. The password fields only take part when
// the old password is given.
//
// When the API accepts the change but the profile cannot be stored locally,
// the new profile is returned together with a KindStorage error.
func (s *ProfileService) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (models.UserProfile, error) {
	clean := models.UpdateProfileRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if req.WantsPasswordChange() {
		clean.OldPassword = req.OldPassword
		clean.Password = req.Password
		clean.PasswordConfirmation = req.PasswordConfirmation
	}

	if fields := validation.Struct(clean); len(fields) > 0 {
		metrics.SessionEvents.WithLabelValues("update_profile", "invalid").Inc()
		return nil, session.NewValidationError(fields)
	}

	user, err := s.gateway.UpdateProfile(ctx, clean)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("update_profile", "rejected").Inc()
		logger.Info("Profile update rejected", zap.Error(err))
		return nil, session.FromRemote(err)
	}

	if err := s.sessions.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, err
		}
		metrics.SessionEvents.WithLabelValues("update_profile", "storage_error").Inc()
		return user, &session.CredentialError{Kind: session.KindStorage, Err: err}
	}

	metrics.SessionEvents.WithLabelValues("update_profile", "success").Inc()
	return user, nil
}
