package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/pkg/errors"

	"evote/internal/models"
)

// CreatePoll inserts the poll and its options as one transaction.
// Option positions are assigned from the slice order; for blockchain
// polls those positions mirror the contract's option indexes, so the
// slice must arrive in the exact order it was sent to the chain.
func (s *Store) CreatePoll(ctx context.Context, p *models.Poll, options []string) (*models.Poll, []models.Option, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.
		Insert("polls").
		Columns("user_id", "title", "description", "type", "blockchain_id").
		Values(p.UserId, p.Title, p.Description, p.Type, p.BlockchainId).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, nil, errors.Wrap(err, "build poll insert")
	}
	if err := pgxscan.Get(ctx, tx, p, query, args...); err != nil {
		return nil, nil, errors.Wrap(err, "insert poll")
	}

	created := make([]models.Option, 0, len(options))
	for i, text := range options {
		query, args, err := psql.
			Insert("options").
			Columns("poll_id", "text", "position").
			Values(p.Id, text, i).
			Suffix("RETURNING *").
			ToSql()
		if err != nil {
			return nil, nil, errors.Wrap(err, "build option insert")
		}
		var opt models.Option
		if err := pgxscan.Get(ctx, tx, &opt, query, args...); err != nil {
			return nil, nil, errors.Wrap(err, "insert option")
		}
		created = append(created, opt)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "commit")
	}
	return p, created, nil
}

func (s *Store) PollByID(ctx context.Context, id int) (*models.Poll, error) {
	query, args, err := psql.
		Select("*").
		From("polls").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build poll query")
	}

	var p models.Poll
	if err := pgxscan.Get(ctx, s.pool, &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "query poll")
	}
	return &p, nil
}

// Polls lists every poll joined with its owner's name parts.
func (s *Store) Polls(ctx context.Context) ([]models.PollSummary, error) {
	query, args, err := psql.
		Select("polls.*", "users.first_name", "users.last_name").
		From("polls").
		Join("users ON polls.user_id = users.id").
		OrderBy("polls.id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build poll list query")
	}

	var polls []models.PollSummary
	if err := pgxscan.Select(ctx, s.pool, &polls, query, args...); err != nil {
		return nil, errors.Wrap(err, "query polls")
	}
	return polls, nil
}

// PollOptions returns the poll's options with their vote tallies,
// ordered by position.
func (s *Store) PollOptions(ctx context.Context, pollID int) ([]models.OptionResult, error) {
	query, args, err := psql.
		Select("options.*", "COUNT(votes.id) AS votes_count").
		From("options").
		LeftJoin("votes ON options.id = votes.option_id").
		Where(sq.Eq{"options.poll_id": pollID}).
		GroupBy("options.id").
		OrderBy("options.position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build options query")
	}

	var options []models.OptionResult
	if err := pgxscan.Select(ctx, s.pool, &options, query, args...); err != nil {
		return nil, errors.Wrap(err, "query options")
	}
	return options, nil
}

func (s *Store) OptionByPosition(ctx context.Context, pollID, position int) (*models.Option, error) {
	query, args, err := psql.
		Select("*").
		From("options").
		Where(sq.Eq{"poll_id": pollID, "position": position}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build option query")
	}

	var opt models.Option
	if err := pgxscan.Get(ctx, s.pool, &opt, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "query option")
	}
	return &opt, nil
}

func (s *Store) HasVoted(ctx context.Context, userID, pollID int) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("votes").
		Where(sq.Eq{"user_id": userID, "poll_id": pollID}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "build vote check")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, "query vote check")
	}
	defer rows.Close()

	voted := rows.Next()
	return voted, rows.Err()
}

// InsertVote records a vote. The UNIQUE (user_id, poll_id) constraint
// turns a concurrent double-submit into ErrDuplicate here instead of a
// second row.
func (s *Store) InsertVote(ctx context.Context, userID, pollID, optionID int) error {
	query, args, err := psql.
		Insert("votes").
		Columns("user_id", "option_id", "poll_id").
		Values(userID, optionID, pollID).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build vote insert")
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert vote")
	}
	return nil
}
