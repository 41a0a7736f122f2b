// Package tenant bundles one authenticated user's working data. The
// workspace is built at login and passed explicitly to handlers and
// aggregator calls; there is no ambient session state.
package tenant

import (
	"fmt"

	"hisab/internal/members"
	"hisab/internal/store"
)

// Workspace is one tenant's open record store plus the deployment-wide
// member directory.
type Workspace struct {
	UserKey   string
	Store     *store.Store
	Directory *members.Directory
}

// Open loads the tenant's record store. The member directory is shared by
// every tenant of the deployment and handed in by the caller.
func Open(dataDir, userKey string, dir *members.Directory) (*Workspace, error) {
	st, err := store.Open(dataDir, userKey)
	if err != nil {
		return nil, fmt.Errorf("open record store for %s: %w", userKey, err)
	}
	return &Workspace{
		UserKey:   userKey,
		Store:     st,
		Directory: dir,
	}, nil
}
