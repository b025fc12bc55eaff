package ports

import (
	"context"

	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
)

// TallyCounter keeps a running tally next to the vote log. Votes are added
// by ID, so adding the same vote twice counts it once and a recount can
// replay the whole log while new votes keep arriving. Load reports synced
// only after MarkSynced, which a recount calls once the log has been
// replayed; a counter that lost its data (for example after a restart)
// reports false until the next recount.
type TallyCounter interface {
	Add(ctx context.Context, votes ...*domain.Vote) error
	Load(ctx context.Context) (tally domain.Tally, synced bool, err error)
	MarkSynced(ctx context.Context) error
}

type RecountService interface {
	Recount(ctx context.Context) (domain.Tally, error)
}
