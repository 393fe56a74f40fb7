package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/auth/password"
	"github.com/inqira/inqira/pkg/db"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	minPasswordLength = 8
)

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, sessionRepo domain.SessionRepository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:         log.Named("auth.service"),
		repo:        repo,
		sessionRepo: sessionRepo,
		genID:       genID,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: &hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		EmailOptOuts: datatypes.JSON([]byte("[]")),
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}

	now := time.Now().UTC()
	return s.sessionRepo.RevokeSession(ctx, session.ID, now)
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := time.Now().UTC()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, session.ID, now); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *Service) UserByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, req domain.ChangePasswordRequest) error {
	if len(strings.TrimSpace(req.NewPassword)) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil || !password.Verify(req.OldPassword, *user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash": hashed,
		"modified_at":   now,
	})
}

func (s *Service) UpdateMe(ctx context.Context, userID snowflake.ID, req domain.UpdateMeRequest) (*domain.User, error) {
	fields := map[string]any{
		"modified_at": time.Now().UTC(),
	}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.EmailOptOuts != nil {
		encoded, err := json.Marshal(*req.EmailOptOuts)
		if err != nil {
			return nil, err
		}
		fields["email_opt_outs"] = datatypes.JSON(encoded)
	}

	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) openSession(ctx context.Context, userID snowflake.ID) (string, *domain.Session, error) {
	rawToken, err := newSessionToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           userID,
		SessionTokenHash: hashToken(rawToken),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return "", nil, err
	}
	return rawToken, session, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
