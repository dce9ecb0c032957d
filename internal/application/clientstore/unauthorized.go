package clientstore

import (
	"context"

	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EndUnauthorized logs out the profile carried by ctx. It is registered
// as the backend client's 401 hook and must not be called while holding
// the profile lock.
func (s *Service) EndUnauthorized(ctx context.Context) {
	id, ok := profile.FromContext(ctx)
	if !ok {
		return
	}
	// the request may already be cancelled; the session must still go
	ctx = context.WithoutCancel(ctx)
	if err := s.Logout(ctx, id, identity.EndReasonUnauthorized); err != nil {
		logger.L(ctx).Error("Failed to end rejected session", zap.Error(err))
	}
}
