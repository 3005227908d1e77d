package provider

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/proneo/platform/internal/domain"
	"google.golang.org/api/iterator"
)

// FirestoreDirectory manages documents of the users collection, keyed by
// lower-cased email.
type FirestoreDirectory struct {
	client *firestore.Client
}

// NewFirestoreDirectory creates a user directory.
func NewFirestoreDirectory(client *firestore.Client) *FirestoreDirectory {
	return &FirestoreDirectory{client: client}
}

func (d *FirestoreDirectory) doc(email string) *firestore.DocumentRef {
	return d.client.Collection(UsersCollection).Doc(domain.NormalizeEmail(email))
}

// Approve grants a pending request the default scout role. It fails with
// NOT_FOUND when the document is missing and CONFLICT when the account is
// already approved.
func (d *FirestoreDirectory) Approve(ctx context.Context, email string) error {
	ref := d.doc(email)
	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := requirePending(tx, ref, email); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "approved", Value: true},
			{Path: "role", Value: string(domain.RoleScout)},
		})
	})
	return decisionErr("approve", email, err)
}

// Reject deletes a pending request. Approved accounts are left alone.
func (d *FirestoreDirectory) Reject(ctx context.Context, email string) error {
	ref := d.doc(email)
	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := requirePending(tx, ref, email); err != nil {
			return err
		}
		return tx.Delete(ref, firestore.Exists)
	})
	return decisionErr("reject", email, err)
}

func requirePending(tx *firestore.Transaction, ref *firestore.DocumentRef, email string) error {
	snap, err := tx.Get(ref)
	var data map[string]interface{}
	if err == nil {
		data = snap.Data()
	}
	return pendingState(email, data, err)
}

// pendingState maps a user document read to the decision precondition.
func pendingState(email string, data map[string]interface{}, err error) error {
	if isNotFound(err) {
		return domain.ErrNotFound("user", email)
	}
	if err != nil {
		return err
	}
	if approved, _ := data["approved"].(bool); approved {
		return domain.ErrConflict("no pending access request for " + email)
	}
	return nil
}

func decisionErr(op, email string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fmt.Errorf("%s user %s: %w", op, email, err)
}

// Get returns one user.
func (d *FirestoreDirectory) Get(ctx context.Context, email string) (*domain.User, error) {
	snap, err := d.doc(email).Get(ctx)
	if isNotFound(err) {
		return nil, domain.ErrNotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	u := userFromMap(snap.Ref.ID, snap.Data())
	return &u, nil
}

// List returns every user, approved or not.
func (d *FirestoreDirectory) List(ctx context.Context) ([]domain.User, error) {
	iter := d.client.Collection(UsersCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []domain.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, userFromMap(snap.Ref.ID, snap.Data()))
	}
	return users, nil
}

// Update changes a user's role and sport.
func (d *FirestoreDirectory) Update(ctx context.Context, email string, role domain.Role, sport domain.Category) error {
	_, err := d.doc(email).Update(ctx, []firestore.Update{
		{Path: "role", Value: string(role)},
		{Path: "sport", Value: string(sport)},
	})
	if isNotFound(err) {
		return domain.ErrNotFound("user", email)
	}
	if err != nil {
		return fmt.Errorf("update user %s: %w", email, err)
	}
	return nil
}

// Delete removes a user document.
func (d *FirestoreDirectory) Delete(ctx context.Context, email string) error {
	if _, err := d.doc(email).Delete(ctx); err != nil {
		return fmt.Errorf("delete user %s: %w", email, err)
	}
	return nil
}

// TokensForRoles returns the push tokens of approved users holding any of
// roles, without duplicates.
func (d *FirestoreDirectory) TokensForRoles(ctx context.Context, roles []domain.Role) ([]string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	iter := d.client.Collection(UsersCollection).
		Where("approved", "==", true).
		Where("role", "in", names).
		Documents(ctx)
	defer iter.Stop()

	var users []domain.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query approver tokens: %w", err)
		}
		users = append(users, userFromMap(snap.Ref.ID, snap.Data()))
	}
	return uniqueTokens(users), nil
}

func uniqueTokens(users []domain.User) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range users {
		for _, t := range u.FCMTokens {
			if t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
