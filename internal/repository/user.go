package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dashauth/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID                int64     `db:"id"`
	Email             *string   `db:"email"`
	PasswordHash      *string   `db:"password_hash"`
	Name              string    `db:"name"`
	TelegramID        *int64    `db:"telegram_id"`
	TelegramUsername  *string   `db:"telegram_username"`
	TelegramFirstName *string   `db:"telegram_first_name"`
	TelegramLastName  *string   `db:"telegram_last_name"`
	TelegramPhotoURL  *string   `db:"telegram_photo_url"`
	AuthMethod        string    `db:"auth_method"`
	CreatedAt         time.Time `db:"created_at"`
}

func (u *userRow) toModel() *model.User {
	return &model.User{
		ID:                u.ID,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Name:              u.Name,
		TelegramID:        u.TelegramID,
		TelegramUsername:  u.TelegramUsername,
		TelegramFirstName: u.TelegramFirstName,
		TelegramLastName:  u.TelegramLastName,
		TelegramPhotoURL:  u.TelegramPhotoURL,
		AuthMethod:        u.AuthMethod,
		CreatedAt:         u.CreatedAt,
	}
}

func (r *Repository) getUserBy(ctx context.Context, q sqlx.QueryerContext, pred squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user userRow
	err = sqlx.GetContext(ctx, q, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUserBy(ctx, r.db, squirrel.Eq{"id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUserBy(ctx, r.db, squirrel.Eq{"email": email})
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return r.getUserBy(ctx, r.db, squirrel.Eq{"telegram_id": telegramID})
}

func (r *Repository) CreateEmailUser(ctx context.Context, email, passwordHash, name string) (*model.User, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"email":         email,
			"password_hash": passwordHash,
			"name":          name,
			"auth_method":   model.AuthMethodEmail,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user insert query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

// UpsertTelegramUser reconciles a canonical telegram identity into the users
// table inside one transaction. Profile fields are refreshed unconditionally;
// name only fills in when it was previously empty. Returns created=true when a
// new row was inserted. A raced insert on telegram_id surfaces
// ErrAlreadyExists so the caller can retry as an update.
func (r *Repository) UpsertTelegramUser(ctx context.Context, ident *model.TelegramIdentity, placeholderEmail, placeholderHash *string) (*model.User, bool, error) {
	var result *model.User
	created := false

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		existing, err := r.getUserBy(ctx, tx, squirrel.Eq{"telegram_id": ident.ID})
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		if existing != nil {
			if err := r.updateTelegramProfile(ctx, tx, ident); err != nil {
				return err
			}
		} else {
			if err := r.insertTelegramUser(ctx, tx, ident, placeholderEmail, placeholderHash); err != nil {
				return err
			}
			created = true
		}

		result, err = r.getUserBy(ctx, tx, squirrel.Eq{"telegram_id": ident.ID})
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, ErrAlreadyExists
		}
		return nil, false, err
	}

	return result, created, nil
}

func (r *Repository) updateTelegramProfile(ctx context.Context, tx *sqlx.Tx, ident *model.TelegramIdentity) error {
	builder := squirrel.
		Update("users").
		Set("telegram_username", nullIfEmpty(ident.Username)).
		Set("telegram_first_name", nullIfEmpty(ident.FirstName)).
		Set("telegram_last_name", nullIfEmpty(ident.LastName)).
		Set("name", squirrel.Expr("COALESCE(NULLIF(name, ''), ?)", ident.FullName())).
		Where(squirrel.Eq{"telegram_id": ident.ID}).
		PlaceholderFormat(squirrel.Dollar)

	// Webhook shapes carry no photo; keep the last one we saw in that case.
	if ident.PhotoURL != "" {
		builder = builder.Set("telegram_photo_url", ident.PhotoURL)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build telegram profile update query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update telegram profile: %w", err)
	}
	return nil
}

func (r *Repository) insertTelegramUser(ctx context.Context, tx *sqlx.Tx, ident *model.TelegramIdentity, placeholderEmail, placeholderHash *string) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"email":               placeholderEmail,
			"password_hash":       placeholderHash,
			"name":                ident.FullName(),
			"telegram_id":         ident.ID,
			"telegram_username":   nullIfEmpty(ident.Username),
			"telegram_first_name": nullIfEmpty(ident.FirstName),
			"telegram_last_name":  nullIfEmpty(ident.LastName),
			"telegram_photo_url":  nullIfEmpty(ident.PhotoURL),
			"auth_method":         model.AuthMethodTelegram,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build telegram user insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*model.UserListing, error) {
	query, args, err := squirrel.
		Select("id", "COALESCE(email, '') AS email", "name", "created_at").
		From("users").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID        int64     `db:"id"`
		Email     string    `db:"email"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
	}
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.UserListing, len(rows))
	for i, row := range rows {
		users[i] = &model.UserListing{
			ID:        row.ID,
			Email:     row.Email,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
		}
	}
	return users, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	return r.countUsers(ctx, nil)
}

func (r *Repository) CountTelegramUsers(ctx context.Context) (int, error) {
	return r.countUsers(ctx, squirrel.Eq{"auth_method": model.AuthMethodTelegram})
}

func (r *Repository) countUsers(ctx context.Context, pred squirrel.Eq) (int, error) {
	builder := squirrel.
		Select("COUNT(*)").
		From("users").
		PlaceholderFormat(squirrel.Dollar)
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
