package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/guard"
	"github.com/proneo/platform/internal/repository"
)

// writeTimeout bounds a background directory write.
const writeTimeout = 10 * time.Second

// UserDirectory is the document store holding user accounts.
type UserDirectory interface {
	Get(ctx context.Context, email string) (*domain.User, error)
	Approve(ctx context.Context, email string) error
	Reject(ctx context.Context, email string) error
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, email string, role domain.Role, sport domain.Category) error
	Delete(ctx context.Context, email string) error
}

// Actor is the authenticated caller of a user-management operation.
type Actor struct {
	Email     string
	Role      domain.Role
	RequestID string
}

// UserService decides access requests and administers accounts.
type UserService struct {
	directory UserDirectory
	db        repository.DBTX
	outbox    repository.OutboxRepository
	dedupe    *guard.IdempotencyGuard
	limiter   *guard.RateLimiter
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewUserService creates a UserService. A nil outbox disables event
// recording.
func NewUserService(
	directory UserDirectory,
	db repository.DBTX,
	outbox repository.OutboxRepository,
	dedupe *guard.IdempotencyGuard,
	limiter *guard.RateLimiter,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		directory: directory,
		db:        db,
		outbox:    outbox,
		dedupe:    dedupe,
		limiter:   limiter,
		logger:    logger,
	}
}

// DecisionResult acknowledges an accepted decision. The directory write
// completes in the background.
type DecisionResult struct {
	Email    string           `json:"email"`
	Decision domain.EventType `json:"decision"`
}

// Approve grants a pending request with the scout role. Only emails with an
// unapproved user document can be decided.
func (s *UserService) Approve(ctx context.Context, actor Actor, email string) (*DecisionResult, error) {
	return s.decide(ctx, actor, email, domain.EventUserApproved, s.directory.Approve)
}

// Reject removes a pending request.
func (s *UserService) Reject(ctx context.Context, actor Actor, email string) (*DecisionResult, error) {
	return s.decide(ctx, actor, email, domain.EventUserRejected, s.directory.Reject)
}

// decide runs the checks shared by approve and reject, records the event and
// dispatches the directory write without waiting for it. A failed write is
// logged only; the live pending query keeps showing the request.
func (s *UserService) decide(ctx context.Context, actor Actor, email string, evt domain.EventType, write func(context.Context, string) error) (*DecisionResult, error) {
	if !actor.Role.CanApproveUsers() {
		return nil, domain.ErrForbidden("only directors and admins can decide access requests")
	}
	email, err := s.admit(ctx, actor, email)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, email); err != nil {
		return nil, err
	}

	key := "decision:" + email
	if res := s.dedupe.Check(ctx, key); !res.Allowed {
		return nil, domain.ErrDuplicateDecision(email)
	}

	decision := domain.UserDecision{Email: email, Actor: actor.Email}
	if evt == domain.EventUserApproved {
		decision.Role = domain.RoleScout
	}
	if err := s.record(ctx, evt, decision, actor.RequestID); err != nil {
		s.dedupe.Remove(key)
		return nil, err
	}

	s.dispatch(ctx, string(evt), email, write)
	s.logger.Info("access request decided", "email", email, "decision", evt, "actor", actor.Email)
	return &DecisionResult{Email: email, Decision: evt}, nil
}

// List returns every user account.
func (s *UserService) List(ctx context.Context, actor Actor) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden("only admins can list users")
	}
	users, err := s.directory.List(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list users", err)
	}
	return users, nil
}

// UpdateInput changes an account's role and sport.
type UpdateInput struct {
	Role  domain.Role     `json:"role"`
	Sport domain.Category `json:"sport"`
}

// Update applies in to the account of email.
func (s *UserService) Update(ctx context.Context, actor Actor, email string, in UpdateInput) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden("only admins can edit users")
	}
	if err := domain.ValidateUserUpdate(in.Role, in.Sport); err != nil {
		return domain.ErrValidation(err.Error())
	}
	email, err := s.admit(ctx, actor, email)
	if err != nil {
		return err
	}

	if err := s.directory.Update(ctx, email, in.Role, in.Sport); err != nil {
		return asAppError("update user", err)
	}
	decision := domain.UserDecision{Email: email, Actor: actor.Email, Role: in.Role, Sport: string(in.Sport)}
	if err := s.record(ctx, domain.EventUserUpdated, decision, actor.RequestID); err != nil {
		return err
	}
	s.logger.Info("user updated", "email", email, "role", in.Role, "sport", in.Sport, "actor", actor.Email)
	return nil
}

// Delete removes the account of email. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, email string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden("only admins can delete users")
	}
	email, err := s.admit(ctx, actor, email)
	if err != nil {
		return err
	}
	if email == domain.NormalizeEmail(actor.Email) {
		return domain.ErrConflict("cannot delete your own account")
	}

	if err := s.directory.Delete(ctx, email); err != nil {
		return asAppError("delete user", err)
	}
	if err := s.record(ctx, domain.EventUserDeleted, domain.UserDecision{Email: email, Actor: actor.Email}, actor.RequestID); err != nil {
		return err
	}
	s.logger.Info("user deleted", "email", email, "actor", actor.Email)
	return nil
}

// Wait blocks until background directory writes have finished.
func (s *UserService) Wait() {
	s.wg.Wait()
}

// admit normalizes and validates email and applies the per-actor rate limit.
func (s *UserService) admit(ctx context.Context, actor Actor, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return "", domain.ErrValidation(err.Error())
	}
	if res := s.limiter.Check(ctx, actor.Email); !res.Allowed {
		return "", domain.ErrRateLimited(res.Reason)
	}
	return email, nil
}

// requirePending refuses emails without a document and accounts that are
// already approved, so a decision never touches a live account.
func (s *UserService) requirePending(ctx context.Context, email string) error {
	u, err := s.directory.Get(ctx, email)
	if err != nil {
		return asAppError("look up access request", err)
	}
	if u.Approved {
		return domain.ErrConflict("no pending access request for " + email)
	}
	return nil
}

func (s *UserService) record(ctx context.Context, evt domain.EventType, d domain.UserDecision, requestID string) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.Insert(ctx, s.db, domain.NewUserEvent(evt, d, requestID)); err != nil {
		return domain.ErrInternal("record user event", err)
	}
	return nil
}

func (s *UserService) dispatch(ctx context.Context, op, email string, write func(context.Context, string) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		if err := write(wctx, email); err != nil {
			s.logger.Error("user directory write failed", "op", op, "email", email, "error", err)
		}
	}()
}

func asAppError(op string, err error) error {
	if appErr, ok := err.(*domain.AppError); ok {
		return appErr
	}
	return domain.ErrInternal(op, err)
}
