package port

import (
	"context"
	"io"

	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
)

// TokenIssuer signs access tokens for an authenticated principal
type TokenIssuer interface {
	Issue(principal auth.Principal) (string, error)
}

// TokenVerifier resolves a bearer token into a principal.
// Invalid or expired tokens yield an apperr.Unauthenticated error.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// PasswordHasher hashes and checks user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// DecisionNotifier announces approve/reject decisions to an external channel
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, trip *entity.TripView) error
}

// TripExporter writes a recap of trips in a tabular format
type TripExporter interface {
	ContentType() string
	FileExtension() string
	Export(ctx context.Context, w io.Writer, trips []*entity.TripView) error
}
