// Package services contains server-side business logic. AccountService
// runs registration, login and profile reads and updates on top of the
// user repository, the cache, the password hasher and the token manager.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/dmitrijs2005/accountd/internal/logging"
	"github.com/dmitrijs2005/accountd/internal/server/auth"
	"github.com/dmitrijs2005/accountd/internal/server/cache"
	"github.com/dmitrijs2005/accountd/internal/server/config"
	"github.com/dmitrijs2005/accountd/internal/server/credentials"
	"github.com/dmitrijs2005/accountd/internal/server/metrics"
	"github.com/dmitrijs2005/accountd/internal/server/models"
	"github.com/dmitrijs2005/accountd/internal/server/repositories/repomanager"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	DOB      string
	Contact  string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateProfileInput struct {
	Name    string
	Age     int
	DOB     string
	Contact string
}

type AccountService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	cache           cache.Cache
	hasher          credentials.Hasher
	tokens          *auth.TokenManager
	profileCacheTTL time.Duration
	log             logging.Logger
	metrics         *metrics.Metrics
}

type Option func(*AccountService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *AccountService) { s.metrics = m }
}

func WithTokenManager(tm *auth.TokenManager) Option {
	return func(s *AccountService) { s.tokens = tm }
}

func WithHasher(h credentials.Hasher) Option {
	return func(s *AccountService) { s.hasher = h }
}

// NewAccountService constructs an AccountService from repositories, the
// cache and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, cfg *config.Config, log logging.Logger, opts ...Option) *AccountService {
	s := &AccountService{
		db:              db,
		repomanager:     m,
		cache:           c,
		hasher:          credentials.NewBcryptHasher(cfg.BcryptCost),
		tokens:          auth.NewTokenManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration),
		profileCacheTTL: cfg.ProfileCacheDuration,
		log:             log.With("module", "accounts"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates in and stores a new user. No token is issued.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (u *models.User, err error) {
	defer func() { s.observe("register", err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" ||
		in.Age == 0 || strings.TrimSpace(in.DOB) == "" || in.Contact == "" {
		return nil, badRequest(MsgAllFieldsRequired)
	}
	if !models.EmailPattern.MatchString(email) {
		return nil, badRequest(MsgInvalidEmail)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, badRequest(MsgPasswordTooShort)
	}
	if !models.ContactPattern.MatchString(in.Contact) {
		return nil, badRequest(MsgInvalidContact)
	}
	dob, err := models.ParseDate(in.DOB)
	if err != nil {
		return nil, badRequest(MsgInvalidDOB)
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, &Error{Kind: KindConflict, Message: MsgEmailExists}
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Error(ctx, "lookup by email failed", "error", err)
		return nil, internal(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, internal(err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Age:          in.Age,
		DOB:          dob,
		Contact:      in.Contact,
	}
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, s.storeError(ctx, "create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials and returns a signed session token. Unknown
// emails and wrong passwords fail identically.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (token string, err error) {
	defer func() { s.observe("login", err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return "", badRequest(MsgCredentialsRequired)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", &Error{Kind: KindUnauthorized, Message: MsgInvalidCredentials}
		}
		s.log.Error(ctx, "lookup by email failed", "error", err)
		return "", internal(err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "password verification failed", "user_id", user.ID, "error", err)
		return "", internal(err)
	}
	if !ok {
		return "", &Error{Kind: KindUnauthorized, Message: MsgInvalidCredentials}
	}

	token, err = s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "error", err)
		return "", internal(err)
	}

	if err := s.cache.SetWithExpiry(ctx, cache.TokenKey(token), user.ID, s.tokens.ValidityDuration()); err != nil {
		s.log.Warn(ctx, "cache token marker failed", "user_id", user.ID, "error", err)
	}

	return token, nil
}

// Authenticate resolves a bearer token to the user id it was issued for.
func (s *AccountService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", &Error{Kind: KindUnauthorized, Message: MsgMissingToken}
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "error", err)
		return "", &Error{Kind: KindUnauthorized, Message: MsgInvalidToken, Err: err}
	}
	return userID, nil
}

// GetProfile returns the user without the password hash, reading through
// the cache.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (u *models.User, err error) {
	defer func() { s.observe("get_profile", err) }()

	if cached, ok := s.cachedProfile(ctx, userID); ok {
		return cached, nil
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &Error{Kind: KindNotFound, Message: MsgUserNotFound}
		}
		s.log.Error(ctx, "lookup by id failed", "user_id", userID, "error", err)
		return nil, internal(err)
	}

	s.cacheProfile(ctx, user)
	return user, nil
}

// UpdateProfile changes name, age, date of birth and contact, and
// overwrites the cached profile.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (u *models.User, err error) {
	defer func() { s.observe("update_profile", err) }()

	if strings.TrimSpace(in.Name) == "" || in.Age == 0 || strings.TrimSpace(in.DOB) == "" || in.Contact == "" {
		return nil, badRequest(MsgAllFieldsRequired)
	}
	if !models.ContactPattern.MatchString(in.Contact) {
		return nil, badRequest(MsgInvalidContact)
	}
	dob, err := models.ParseDate(in.DOB)
	if err != nil {
		return nil, badRequest(MsgInvalidDOB)
	}

	upd := models.ProfileUpdate{Name: in.Name, Age: in.Age, DOB: dob, Contact: in.Contact}
	user, err := s.repomanager.Users(s.db).UpdateByID(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &Error{Kind: KindNotFound, Message: MsgUserNotFound}
		}
		return nil, s.storeError(ctx, "update user", err)
	}

	s.cacheProfile(ctx, user)
	s.log.Info(ctx, "profile updated", "user_id", userID)
	return user, nil
}

func (s *AccountService) cachedProfile(ctx context.Context, userID string) (*models.User, bool) {
	raw, err := s.cache.Get(ctx, cache.UserKey(userID))
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			s.log.Warn(ctx, "cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		s.log.Warn(ctx, "cached profile is corrupt", "user_id", userID, "error", err)
		return nil, false
	}
	return user, true
}

func (s *AccountService) cacheProfile(ctx context.Context, user *models.User) {
	b, err := json.Marshal(user)
	if err != nil {
		s.log.Warn(ctx, "profile encoding failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.cache.SetWithExpiry(ctx, cache.UserKey(user.ID), string(b), s.profileCacheTTL); err != nil {
		s.log.Warn(ctx, "cache write failed", "user_id", user.ID, "error", err)
	}
}

// storeError maps repository failures on writes.
func (s *AccountService) storeError(ctx context.Context, op string, err error) *Error {
	var ve *models.ValidationError
	switch {
	case errors.Is(err, common.ErrDuplicateKey):
		return &Error{Kind: KindConflict, Message: MsgEmailExists, Err: err}
	case errors.As(err, &ve):
		return &Error{Kind: KindBadRequest, Message: ve.Message, Err: err}
	default:
		s.log.Error(ctx, op+" failed", "error", err)
		return internal(err)
	}
}

func (s *AccountService) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	s.metrics.AuthOutcome(op, outcome)
}
