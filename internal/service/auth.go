package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/auth"
	"hustle/internal/domain"
	"hustle/internal/redis"
	"hustle/internal/repository"
)

const (
	minPasswordLength = 6
	otpDigits         = 6
	otpTTL            = 5 * time.Minute
)

// OTPSender delivers a phone verification code.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// AuthService handles signup, login, session lookup and account verification.
type AuthService struct {
	users        repository.UserRepository
	wallets      *WalletService
	tokens       *auth.TokenManager
	sessionStore redis.SessionStoreInterface
	otpStore     redis.OTPStoreInterface
	otpSender    OTPSender
	revoked      *revokedTokens
	sessionTTL   time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService. sessionStore may be nil, in which
// case sessions are validated from the token and the user repository alone
// and logout revokes tokens in this process only. A nil otpStore keeps codes
// in process memory.
func NewAuthService(
	users repository.UserRepository,
	wallets *WalletService,
	tokens *auth.TokenManager,
	sessionStore redis.SessionStoreInterface,
	otpStore redis.OTPStoreInterface,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("auth")
	if otpStore == nil {
		otpStore = newLocalCodes(time.Now)
	}
	return &AuthService{
		users:        users,
		wallets:      wallets,
		tokens:       tokens,
		sessionStore: sessionStore,
		otpStore:     otpStore,
		otpSender:    logOTPSender{logger: logger},
		revoked:      newRevokedTokens(),
		sessionTTL:   sessionTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// WithOTPSender replaces the default sender, which only logs the code.
func (s *AuthService) WithOTPSender(sender OTPSender) *AuthService {
	s.otpSender = sender
	return s
}

// SignupRequest contains the parameters for creating an account.
type SignupRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.UserRole
	Location *domain.Location
}

// Signup creates the account and its wallet and opens a session.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name", "is required")
	}
	if !isValidEmail(email) {
		return nil, invalid("email", "must be a valid email address")
	}
	if !isValidPhone(req.Phone) {
		return nil, invalid("phone", "must be a valid Nigerian phone number")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password", "must be at least 6 characters")
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	if !req.Role.Valid() {
		return nil, invalid("role", "must be user, runner or both")
	}
	if !validLocationPtr(req.Location) {
		return nil, ErrInvalidLocation
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: hash,
		Location:     req.Location,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if _, err := s.wallets.InitializeWallet(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.openSession(ctx, user)
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// Logout revokes the session for token. Without a session store the token is
// only rejected by this process until it expires.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessionStore != nil {
		return s.sessionStore.DeleteSession(ctx, token)
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	s.revoked.add(token, claims.ExpiresAt.Time, s.now())
	return nil
}

// Session returns the live session for token, or ErrUnauthorized.
func (s *AuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || s.revoked.has(token, s.now()) {
		return nil, ErrUnauthorized
	}

	if s.sessionStore != nil {
		session, err := s.sessionStore.GetSession(ctx, token)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrUnauthorized
		}
		return session, nil
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &domain.Session{User: *user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// SendOTP issues a fresh verification code for the user's phone. A new code
// replaces any pending one.
func (s *AuthService) SendOTP(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	code, err := newOTPCode()
	if err != nil {
		return err
	}
	if err := s.otpStore.SetCode(ctx, user.ID, code, otpTTL); err != nil {
		return err
	}
	if err := s.otpSender.SendOTP(ctx, user.Phone, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// VerifyOTP checks code against the pending one and marks the phone verified.
// A code is single use.
func (s *AuthService) VerifyOTP(ctx context.Context, session *domain.Session, code string) (*domain.User, error) {
	code = strings.TrimSpace(code)
	if len(code) != otpDigits {
		return nil, ErrInvalidOTP
	}

	want, err := s.otpStore.GetCode(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(code)) != 1 {
		return nil, ErrInvalidOTP
	}
	if err := s.otpStore.DeleteCode(ctx, session.User.ID); err != nil {
		return nil, err
	}

	return s.updateUser(ctx, session, func(u *domain.User) { u.PhoneVerified = true })
}

// KYCRequest carries the identity document of a KYC submission.
type KYCRequest struct {
	IDType   string
	IDNumber string
}

// CompleteKYC records the user's identity document. The phone must be
// verified first.
func (s *AuthService) CompleteKYC(ctx context.Context, session *domain.Session, req KYCRequest) (*domain.User, error) {
	if strings.TrimSpace(req.IDType) == "" {
		return nil, invalid("id_type", "is required")
	}
	if !isValidIDNumber(req.IDNumber) {
		return nil, invalid("id_number", "must be 6 to 20 letters or digits")
	}

	user, err := s.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	if !user.PhoneVerified {
		return nil, ErrPhoneNotVerified
	}

	updated, err := s.updateUser(ctx, session, func(u *domain.User) { u.KYCCompleted = true })
	if err != nil {
		return nil, err
	}
	s.logger.Info("kyc completed", zap.String("user_id", updated.ID), zap.String("id_type", strings.TrimSpace(req.IDType)))
	return updated, nil
}

// updateUser applies fn to the stored user and refreshes the cached session.
func (s *AuthService) updateUser(ctx context.Context, session *domain.Session, fn func(*domain.User)) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	fn(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.sessionStore != nil {
		if ttl := session.ExpiresAt.Sub(s.now()); ttl > 0 {
			refreshed := &domain.Session{User: *user, Token: session.Token, ExpiresAt: session.ExpiresAt}
			if err := s.sessionStore.SetSession(ctx, refreshed, ttl); err != nil {
				return nil, err
			}
		}
	}
	return user, nil
}

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// logOTPSender stands in for an SMS gateway.
type logOTPSender struct {
	logger *zap.Logger
}

func (l logOTPSender) SendOTP(_ context.Context, phone, code string) error {
	l.logger.Info("verification code issued", zap.String("phone", maskPhone(phone)))
	l.logger.Debug("verification code", zap.String("phone", maskPhone(phone)), zap.String("code", code))
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	session := &domain.Session{User: *user, Token: token, ExpiresAt: expiresAt}
	if s.sessionStore != nil {
		ttl := s.sessionTTL
		if ttl <= 0 || ttl > time.Until(expiresAt) {
			ttl = time.Until(expiresAt)
		}
		if err := s.sessionStore.SetSession(ctx, session, ttl); err != nil {
			return nil, err
		}
	}
	return session, nil
}
