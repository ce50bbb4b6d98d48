// Package neynar provides a client for the Neynar Farcaster API.
//
// This package includes:
//   - A configurable HTTP client with per-call timeouts and error handling
//   - Type-safe models for Neynar API responses
//   - Helper functions for constructing API endpoints
//   - Paced bulk hydration of following lists
//
// Example usage:
//
//	client := neynar.NewClient(cfg.Neynar, cfg.RateLimit, log)
//
//	user, err := client.FetchUser(ctx, 3621)
//	if err != nil {
//	    if apiErr, ok := err.(*errors.Error); ok {
//	        switch apiErr.Type {
//	        case errors.ErrorTypeNotFound:
//	            // Unknown FID
//	        case errors.ErrorTypeRateLimit:
//	            // Upstream throttling
//	        }
//	    }
//	}
//
//	following, err := client.FetchFollowing(ctx, user.FID)
//	accounts := client.HydrateFollowing(ctx, user.FID, following)
package neynar
