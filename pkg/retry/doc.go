// Package retry provides configurable retry logic with backoff strategies.
//
// It is used for the single-profile upstream fetch behind /api/user-info;
// scan-path calls are deliberately never retried, failed hydration
// batches are logged and skipped instead.
//
//	user, err := retry.DoWithResult(func() (*neynar.User, error) {
//	    return client.FetchUser(ctx, fid)
//	}, retry.DefaultConfig())
package retry
