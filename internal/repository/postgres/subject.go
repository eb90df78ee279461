package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"authz-service/pkg/rbac"
)

const subjectRolesSchema = `
	CREATE TABLE IF NOT EXISTS subject_roles (
		subject_id TEXT PRIMARY KEY,
		role       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// SubjectRepository reads the role assigned to a subject.
type SubjectRepository struct {
	q Querier
}

func NewSubjectRepository(q Querier) *SubjectRepository {
	return &SubjectRepository{q: q}
}

// EnsureSchema creates the subject_roles table if it is missing.
func (r *SubjectRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, subjectRolesSchema); err != nil {
		return errFailedEnsureSchema(err)
	}
	return nil
}

// RoleFor returns the stored role of subjectID. A subject with no row has
// no role; that is not an error. The stored value is returned as written so
// that a role outside the enumeration is denied by the engine rather than
// rejected here.
func (r *SubjectRepository) RoleFor(ctx context.Context, subjectID string) (rbac.Role, error) {
	query := `
		SELECT role
		FROM subject_roles
		WHERE subject_id = $1
	`

	var role string
	err := r.q.QueryRow(ctx, query, subjectID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.RoleNone, nil
		}
		if isUndefinedTable(err) {
			return rbac.RoleNone, errSchemaMissing(err)
		}
		return rbac.RoleNone, errFailedGetSubjectRole(err)
	}

	return rbac.Role(role), nil
}
