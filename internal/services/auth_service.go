package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astromatch/internal/calendar"
	"astromatch/internal/metrics"
	"astromatch/internal/models"
	"astromatch/internal/repositories"
	"astromatch/internal/session"
	"astromatch/internal/zodiac"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and the session that follows.
type AuthService struct {
	userRepo  repositories.UserRepository
	sessions  session.Store
	events    EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, sessions session.Store, events EventPublisher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		events:    events,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// RegisterInput is the data a new member signs up with.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,max=72"`
	Instagram string `json:"instagram" validate:"max=100"`
	Twitter   string `json:"twitter" validate:"max=100"`
	Birthday  string `json:"birthday" validate:"required"`
}

// Register creates a user with a hashed password and a zodiac sign derived
// from the birthday.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	// validator counts runes; bcrypt counts bytes.
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	born, err := zodiac.Parse(in.Birthday)
	if err != nil {
		return nil, fmt.Errorf("%w: birthday must be a date in YYYY-MM-DD form", ErrInvalidInput)
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, in.Username)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Password:  string(hashedPassword),
		Instagram: in.Instagram,
		Twitter:   in.Twitter,
		Birthday:  born.Format(zodiac.DateLayout),
		Zodiac:    string(zodiac.Classify(born)),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, in.Username)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	publish(s.events, EventUserRegistered, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"zodiac":   user.Zodiac,
	})

	user.Password = ""
	return user, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  models.User       `json:"user"`
	Token string            `json:"token"`
	View  calendar.MonthKey `json:"view"`
}

// Login checks the credentials, opens a session and issues a token bound to
// it. Username matching is exact and case-sensitive.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	// The calendar opens on the member's birthday month.
	view := calendar.MonthOf(now)
	if born, err := user.BirthDate(); err == nil {
		view = calendar.MonthKey{Year: now.Year(), Month: born.Month()}
	}

	sid := uuid.NewString()
	profile := user.WithZodiac()
	profile.Password = ""
	if err := s.storeSnapshot(ctx, sid, session.Snapshot{User: profile, View: view}); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"sid":      sid,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{User: profile, Token: tokenString, View: view}, nil
}

// TokenClaims are the identity fields carried by a session token.
type TokenClaims struct {
	UserID    string
	Username  string
	SessionID string
}

// ValidateToken parses and validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	sid, _ := claims["sid"].(string)
	if userID == "" || sid == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return &TokenClaims{UserID: userID, Username: username, SessionID: sid}, nil
}

// Authenticate validates the token and checks that the session it names
// is still open. A logged-out or expired session gives ErrNoSession.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadSnapshot(ctx, claims.SessionID, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Resume restores the session sid for userID. A missing or unreadable
// snapshot, or one whose user no longer exists, means "not logged in".
// The cached profile is refreshed from the store on every resume.
func (s *AuthService) Resume(ctx context.Context, sid, userID string) (*session.Snapshot, error) {
	snap, err := s.loadSnapshot(ctx, sid, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.dropSession(ctx, sid)
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to revalidate session user: %w", err)
	}
	snap.User = user.WithZodiac()
	snap.User.Password = ""

	if err := s.storeSnapshot(ctx, sid, *snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// SaveView remembers the month the user last looked at.
func (s *AuthService) SaveView(ctx context.Context, sid, userID string, view calendar.MonthKey) (*session.Snapshot, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, calendar.ErrInvalidMonth)
	}
	snap, err := s.loadSnapshot(ctx, sid, userID)
	if err != nil {
		return nil, err
	}
	snap.View = view
	if err := s.storeSnapshot(ctx, sid, *snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Logout discards the session.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (s *AuthService) loadSnapshot(ctx context.Context, sid, userID string) (*session.Snapshot, error) {
	raw, err := s.sessions.Load(ctx, sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	snap, err := session.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("sid", sid).Msg("discarding unreadable session")
		s.dropSession(ctx, sid)
		return nil, ErrNoSession
	}
	if snap.User.ID != userID {
		return nil, ErrNoSession
	}
	return &snap, nil
}

func (s *AuthService) storeSnapshot(ctx context.Context, sid string, snap session.Snapshot) error {
	snap.SavedAt = s.now()
	raw, err := session.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, sid, raw, s.tokenTTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *AuthService) dropSession(ctx context.Context, sid string) {
	if err := s.sessions.Delete(ctx, sid); err != nil {
		log.Warn().Err(err).Str("sid", sid).Msg("failed to drop session")
	}
}
