package provider

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/proneo/platform/internal/domain"
)

// FirestoreRoster streams the players collection and pending access
// requests through Firestore snapshot listeners.
type FirestoreRoster struct {
	client *firestore.Client
	limit  int
	logger *slog.Logger
}

// NewFirestoreRoster creates a roster source reading at most limit players.
func NewFirestoreRoster(client *firestore.Client, limit int, logger *slog.Logger) *FirestoreRoster {
	return &FirestoreRoster{client: client, limit: limit, logger: logger}
}

func (r *FirestoreRoster) WatchPlayers(ctx context.Context, fn func([]domain.Player)) error {
	q := r.client.Collection(PlayersCollection).Limit(r.limit)
	return watch(ctx, q, func(docs []*firestore.DocumentSnapshot) {
		players := make([]domain.Player, 0, len(docs))
		for _, doc := range docs {
			players = append(players, r.decodePlayer(doc))
		}
		fn(players)
	})
}

func (r *FirestoreRoster) WatchPending(ctx context.Context, fn func([]domain.PendingUserRequest)) error {
	q := r.client.Collection(UsersCollection).Where("approved", "==", false)
	return watch(ctx, q, func(docs []*firestore.DocumentSnapshot) {
		pending := make([]domain.PendingUserRequest, 0, len(docs))
		for _, doc := range docs {
			pending = append(pending, userFromMap(doc.Ref.ID, doc.Data()).PendingRequest())
		}
		fn(pending)
	})
}

// decodePlayer maps a document onto Player. Documents whose field types
// drifted from the schema are decoded field by field instead of dropped.
func (r *FirestoreRoster) decodePlayer(doc *firestore.DocumentSnapshot) domain.Player {
	var p domain.Player
	if err := doc.DataTo(&p); err != nil {
		r.logger.Debug("lenient player decode", "id", doc.Ref.ID, "error", err)
		p = playerFromMap(doc.Data())
	}
	p.ID = doc.Ref.ID
	return p
}

func watch(ctx context.Context, q firestore.Query, fn func([]*firestore.DocumentSnapshot)) error {
	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("snapshot listener: %w", err)
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read snapshot documents: %w", err)
		}
		fn(docs)
	}
}

func playerFromMap(m map[string]interface{}) domain.Player {
	p := domain.Player{
		FirstName:       str(m["firstName"]),
		LastName1:       str(m["lastName1"]),
		LastName2:       str(m["lastName2"]),
		Name:            str(m["name"]),
		Nationality:     str(m["nationality"]),
		BirthDate:       str(m["birthDate"]),
		Club:            str(m["club"]),
		League:          str(m["league"]),
		Position:        str(m["position"]),
		PreferredFoot:   str(m["preferredFoot"]),
		Category:        domain.Category(str(m["category"])),
		IsScouting:      truthy(m["isScouting"]),
		MonitoringAgent: str(m["monitoringAgent"]),
		CreatedAt:       millis(m["createdAt"]),
		UpdatedAt:       millis(m["updatedAt"]),
	}
	if c, ok := submap(m, "contract"); ok {
		p.Contract = &domain.PlayerContract{
			EndDate:            str(c["endDate"]),
			Clause:             str(c["clause"]),
			Optional:           str(c["optional"]),
			OptionalNoticeDate: str(c["optionalNoticeDate"]),
			Conditions:         str(c["conditions"]),
		}
	}
	if a, ok := submap(m, "proneo"); ok {
		p.Proneo = &domain.AgencyLink{
			ContractDate:  str(a["contractDate"]),
			AgencyEndDate: str(a["agencyEndDate"]),
			CommissionPct: num(a["commissionPct"]),
			PayerType:     str(a["payerType"]),
		}
	}
	if s, ok := submap(m, "scouting"); ok {
		p.Scouting = &domain.ScoutingInfo{
			Status:          str(s["status"]),
			Notes:           str(s["notes"]),
			CurrentAgent:    str(s["currentAgent"]),
			AgentEndDate:    str(s["agentEndDate"]),
			ContractType:    str(s["contractType"]),
			ContractEnd:     str(s["contractEnd"]),
			LastContactDate: str(s["lastContactDate"]),
		}
	}
	return p
}

func userFromMap(id string, m map[string]interface{}) domain.User {
	email := domain.NormalizeEmail(str(m["email"]))
	if email == "" {
		email = id
	}
	return domain.User{
		Email:     email,
		Name:      str(m["name"]),
		Role:      domain.Role(str(m["role"])),
		Sport:     domain.Category(str(m["sport"])),
		Approved:  truthy(m["approved"]),
		FCMTokens: stringList(m["fcmTokens"]),
	}
}
