package session

import "context"

// Logout revokes the presented refresh token. A missing or unparsable
// token makes this a no-op: logout always succeeds, and a second call
// after the cookies are gone performs no persistence write.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.signer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.users.ClearRefreshToken(ctx, claims.UserID, refreshToken); err != nil {
		return err
	}
	s.audit("user_logged_out", map[string]string{"user_id": claims.UserID})
	return nil
}
