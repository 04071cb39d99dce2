package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"service-planner/internal/domain"
	"service-planner/internal/repository"
)

const (
	tokenLifetime = 7 * 24 * time.Hour
	otpLifetime   = 5 * time.Minute
	bcryptCost    = 10
)

var otpRe = regexp.MustCompile(`^\d{6}$`)

// AuthService handles signup, login, OTP verification and profile
// maintenance. Session tokens are HS256 JWTs carrying the user id as
// subject.
type AuthService struct {
	txManager repository.TxManager
	sms       SMSSender
	jwtSecret []byte
	clock     func() time.Time
}

func NewAuthService(txManager repository.TxManager, sms SMSSender, jwtSecret string) *AuthService {
	return &AuthService{
		txManager: txManager,
		sms:       sms,
		jwtSecret: []byte(jwtSecret),
		clock:     time.Now,
	}
}

// Signup registers a new user. The account is created verified; the
// verification OTP is still sent so the client flow works, but a send
// failure does not fail the signup.
func (s *AuthService) Signup(ctx context.Context, mobile, name, password string) (domain.User, error) {
	mobile = strings.TrimSpace(mobile)
	name = strings.TrimSpace(name)
	if mobile == "" || name == "" || password == "" {
		return domain.User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.New(),
		Mobile:       mobile,
		Name:         name,
		PasswordHash: string(hash),
		IsVerified:   true,
		CreatedAt:    s.clock(),
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		exists, err := repos.Users.ExistsByNameOrMobile(ctx, name, mobile)
		if err != nil {
			return err
		}
		if exists {
			return ErrConflict
		}
		return repos.Users.Insert(ctx, user)
	})
	if err != nil {
		return domain.User{}, err
	}

	// Best effort only.
	_ = s.SendOTP(ctx, mobile)

	return user, nil
}

// Login authenticates by name and password and returns a signed token.
func (s *AuthService) Login(ctx context.Context, name, password string) (string, domain.User, error) {
	if name == "" || password == "" {
		return "", domain.User{}, ErrInvalidInput
	}

	var user domain.User
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		user, err = repos.Users.GetByName(ctx, name)
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return "", domain.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, ErrUnauthorized
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := s.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	})
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates a bearer token and returns the user id it was
// issued for.
func (s *AuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var user domain.User
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, userID)
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	})
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, mobile string) (domain.User, error) {
	name = strings.TrimSpace(name)
	mobile = strings.TrimSpace(mobile)
	if name == "" || mobile == "" {
		return domain.User{}, ErrInvalidInput
	}

	var user domain.User
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		user, err = repos.Users.UpdateProfile(ctx, userID, name, mobile)
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	})
	return user, err
}

// UpdatePassword requires the current password before accepting a new
// one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return ErrInvalidInput
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
			return ErrUnauthorized
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
		if err != nil {
			return err
		}
		return repos.Users.UpdatePasswordByID(ctx, userID, string(hash))
	})
}

// SendOTP generates a six-digit code, stores it with a short expiry and
// hands it to the SMS sender.
func (s *AuthService) SendOTP(ctx context.Context, mobile string) error {
	if mobile == "" {
		return ErrInvalidInput
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		return repos.Users.SetOTP(ctx, mobile, code, s.clock().Add(otpLifetime))
	})
	if err != nil {
		return err
	}

	return s.sms.SendSMS(ctx, mobile, "Your verification code is "+code)
}

// VerifyOTP checks the submitted code against the stored one and marks
// the account verified on success.
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, otp string) error {
	if mobile == "" || !otpRe.MatchString(otp) {
		return ErrInvalidInput
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		user, err := repos.Users.GetByMobile(ctx, mobile)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !s.otpMatches(user, otp) {
			return ErrUnauthorized
		}
		return repos.Users.MarkVerified(ctx, mobile)
	})
}

// RequestPasswordReset sends a reset OTP when the mobile is known. It
// reports success either way so the endpoint cannot be used to probe
// which numbers are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, mobile string) error {
	if mobile == "" {
		return ErrInvalidInput
	}

	var known bool
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		_, err := repos.Users.GetByMobile(ctx, mobile)
		if isNoRows(err) {
			return nil
		}
		if err != nil {
			return err
		}
		known = true
		return nil
	})
	if err != nil {
		return err
	}
	if !known {
		return nil
	}

	return s.SendOTP(ctx, mobile)
}

// VerifyResetOTP checks a reset code without consuming it.
func (s *AuthService) VerifyResetOTP(ctx context.Context, mobile, otp string) error {
	if mobile == "" || !otpRe.MatchString(otp) {
		return ErrInvalidInput
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		user, err := repos.Users.GetByMobile(ctx, mobile)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !s.otpMatches(user, otp) {
			return ErrUnauthorized
		}
		return nil
	})
}

// ResetPassword consumes a valid reset code and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, mobile, otp, newPassword string) error {
	if mobile == "" || newPassword == "" || !otpRe.MatchString(otp) {
		return ErrInvalidInput
	}

	return s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		user, err := repos.Users.GetByMobile(ctx, mobile)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !s.otpMatches(user, otp) {
			return ErrUnauthorized
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
		if err != nil {
			return err
		}
		if err := repos.Users.UpdatePasswordByMobile(ctx, mobile, string(hash)); err != nil {
			return err
		}
		return repos.Users.MarkVerified(ctx, mobile)
	})
}

// PurgeExpiredOTPs is run periodically by the cron job in internal/app.
func (s *AuthService) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	var purged int64
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		purged, err = repos.Users.PurgeExpiredOTPs(ctx, s.clock())
		return err
	})
	return purged, err
}

func (s *AuthService) otpMatches(user domain.User, otp string) bool {
	if user.OTP == nil || user.OTPExpiresAt == nil {
		return false
	}
	if s.clock().After(*user.OTPExpiresAt) {
		return false
	}
	return *user.OTP == otp
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
