package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/pkg/errors"

	"evote/internal/models"
)

func (s *Store) userBy(ctx context.Context, pred sq.Eq) (*models.User, error) {
	query, args, err := psql.
		Select("*").
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build user query")
	}

	var u models.User
	if err := pgxscan.Get(ctx, s.pool, &u, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "query user")
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	return s.userBy(ctx, sq.Eq{"id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userBy(ctx, sq.Eq{"email": email})
}

func (s *Store) UserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.userBy(ctx, sq.Eq{"google_id": googleID})
}

// CreateUser inserts u and fills in the generated id, uuid and
// created_at. A duplicate email or google id comes back as ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	query, args, err := psql.
		Insert("users").
		Columns("google_id", "first_name", "last_name", "email", "password", "phone_number").
		Values(u.GoogleId, u.FirstName, u.LastName, u.Email, u.Password, u.PhoneNumber).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build user insert")
	}

	if err := pgxscan.Get(ctx, s.pool, u, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// UpdateUser applies the account-settings form: name parts and email.
func (s *Store) UpdateUser(ctx context.Context, id int, firstName, lastName, email string) error {
	query, args, err := psql.
		Update("users").
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("email", email).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build user update")
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
