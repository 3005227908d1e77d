package provider

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/proneo/platform/internal/settings"
)

// FirestoreLists reads and writes the shared picklists document.
type FirestoreLists struct {
	client *firestore.Client
}

// NewFirestoreLists creates a picklist store.
func NewFirestoreLists(client *firestore.Client) *FirestoreLists {
	return &FirestoreLists{client: client}
}

// Load returns the document, seeding it with the defaults when it has no
// clubs yet.
func (l *FirestoreLists) Load(ctx context.Context) (settings.SystemLists, error) {
	var lists settings.SystemLists
	snap, err := l.client.Doc(SystemListsDoc).Get(ctx)
	switch {
	case isNotFound(err):
	case err != nil:
		return lists, fmt.Errorf("get system lists: %w", err)
	default:
		if err := snap.DataTo(&lists); err != nil {
			return lists, fmt.Errorf("decode system lists: %w", err)
		}
	}

	if lists.NeedsSeed() {
		lists = settings.DefaultSystemLists()
		if err := l.Save(ctx, lists); err != nil {
			return lists, err
		}
	}
	return lists, nil
}

// Save overwrites the document.
func (l *FirestoreLists) Save(ctx context.Context, lists settings.SystemLists) error {
	if _, err := l.client.Doc(SystemListsDoc).Set(ctx, lists); err != nil {
		return fmt.Errorf("save system lists: %w", err)
	}
	return nil
}
