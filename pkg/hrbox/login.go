package hrbox

import (
	"context"
	"errors"
)

// Login posts the credentials as a form. On success the session's cookie
// jar holds the authenticated session cookie.
func Login(ctx context.Context, s *Session, creds Credentials) error {
	s.logger.Debug("Logging in", "username", creds.Username, "password", "*****")
	_, err := s.PostForm(ctx, LoginPath, map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err == nil {
		s.logger.Info("Logged in", "username", creds.Username)
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Err == nil {
		return &AuthenticationError{Username: creds.Username, StatusCode: httpErr.StatusCode}
	}
	return err
}
