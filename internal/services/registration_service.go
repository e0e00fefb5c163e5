package services

import (
	"context"
	"strings"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/session"
	"github.com/gobarber/gobarber-client/internal/validation"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"go.uber.org/zap"
)

// RegistrationService handles account sign-up
type RegistrationService struct {
	gateway UserGateway
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(gateway UserGateway) *RegistrationService {
	return &RegistrationService{gateway: gateway}
}

// SignUp validates the form and registers the account. Failures are
// *session.CredentialError. The new user still has to sign in.
func (s *RegistrationService) SignUp(ctx context.Context, req *models.SignUpRequest) (models.UserProfile, error) {
	clean := models.SignUpRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}

	if fields := validation.Struct(clean); len(fields) > 0 {
		metrics.SessionEvents.WithLabelValues("sign_up", "invalid").Inc()
		return nil, session.NewValidationError(fields)
	}

	user, err := s.gateway.CreateUser(ctx, clean)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("sign_up", "rejected").Inc()
		logger.Info("Sign up rejected", zap.Error(err))
		return nil, session.FromRemote(err)
	}

	metrics.SessionEvents.WithLabelValues("sign_up", "success").Inc()
	logger.Info("Account registered", zap.String("user_id", user.ID()))
	return user, nil
}
