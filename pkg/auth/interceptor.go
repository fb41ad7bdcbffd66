package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

// Middleware returns a transport middleware that attaches the bearer
// token to outgoing requests and recovers from a single 401 by
// refreshing the session and retrying once.
//
// Per request, at most two underlying call attempts are made:
//
//   - Attempt 0 proceeds without an Authorization header when no valid
//     token is available, so unauthenticated endpoints still work.
//   - A 401 on attempt 0 triggers one refresh; a refresh failure replaces
//     the original 401.
//   - On attempt 1 a failed token lookup propagates immediately rather
//     than issuing a second unauthenticated call.
//   - Any non-401 failure propagates immediately.
func (s *Service) Middleware() api.Middleware {
	return func(next api.Perform) api.Perform {
		return func(ctx context.Context, method, endpoint string, opts api.RequestOptions) ([]byte, error) {
			for attempt := 0; attempt <= 1; attempt++ {
				attemptOpts := opts

				token, err := s.AccessToken()
				switch {
				case err == nil:
					attemptOpts.Header = withBearer(opts.Header, token)
				case attempt == 0:
					log.Warn().
						Str("method", method).
						Str("endpoint", endpoint).
						Msg("No valid access token, attempting request unauthenticated")
				default:
					// The refresh succeeded but still left no usable token.
					// Bail out instead of looping on unauthenticated 401s.
					return nil, err
				}

				body, callErr := next(ctx, method, endpoint, attemptOpts)
				if callErr == nil {
					return body, nil
				}

				if attempt == 0 && api.IsStatus(callErr, http.StatusUnauthorized) {
					log.Warn().
						Str("method", method).
						Str("endpoint", endpoint).
						Msg("Received 401, refreshing access token")

					if refreshErr := s.Refresh(ctx); refreshErr != nil {
						log.Error().Err(refreshErr).Msg("Token refresh failed")
						return nil, refreshErr
					}
					continue
				}

				return nil, callErr
			}

			// Unreachable: attempt 1 always returns above.
			return nil, ErrExhaustedRetries
		}
	}
}

func withBearer(header http.Header, token string) http.Header {
	merged := header.Clone()
	if merged == nil {
		merged = http.Header{}
	}
	merged.Set("Authorization", "Bearer "+token)
	return merged
}
