package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jatinupadhyay27/my-meet/internal/app/orch"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

var (
	ErrTitleEmpty      = errors.New("meeting title empty")
	ErrHostEmpty       = errors.New("host name empty")
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrWrongPassword   = errors.New("wrong meeting password")
)

// MediaClaims is the token handed to clients for the external media
// server once they passed the password check.
type MediaClaims struct {
	Room        domain.RoomID `json:"room"`
	DisplayName string        `json:"name"`
	jwt.RegisteredClaims
}

// Service owns meeting metadata: creation with generated codes, password
// checks, media-server token issuance, and the directory lookups the
// coordinator consults before allowing a websocket join.
type Service struct {
	repo      Repo
	cache     *Cache
	jwtSecret []byte
	tokenTTL  time.Duration
	newCode   func() string
}

func NewService(repo Repo, cache *Cache, jwtSecret []byte, tokenTTL time.Duration) (*Service, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, codeLength)
	if err != nil {
		return nil, fmt.Errorf("meeting code generator: %w", err)
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		newCode:   gen,
	}, nil
}

// Create registers a new meeting under a fresh 6-char code. The password
// is optional; when given it is stored bcrypt-hashed.
func (s *Service) Create(ctx context.Context, title, hostName, password string) (*Meeting, error) {
	if title == "" {
		return nil, ErrTitleEmpty
	}
	if hostName == "" {
		return nil, ErrHostEmpty
	}

	m := &Meeting{
		Code:      domain.RoomID(s.newCode()),
		Title:     title,
		HostName:  hostName,
		CreatedAt: time.Now().UTC(),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash meeting password: %w", err)
		}
		m.PasswordHash = string(hash)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("persist meeting: %w", err)
	}
	s.cache.setMeta(ctx, m.Code, cachedMeta{Exists: true, RequiresPassword: m.RequiresPassword()})
	log.Info().Str("module", "meetings").Str("code", string(m.Code)).Str("host", hostName).Msg("meeting created")
	return m, nil
}

func (s *Service) Get(ctx context.Context, rawCode string) (*Meeting, error) {
	code := domain.NormalizeRoomID(rawCode)
	m, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMeetingNotFound
	}
	return m, nil
}

// Join checks the meeting password and issues a media-server token for
// the display name. Open meetings accept any password value.
func (s *Service) Join(ctx context.Context, rawCode, password, displayName string) (string, error) {
	m, err := s.Get(ctx, rawCode)
	if err != nil {
		return "", err
	}
	if m.RequiresPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
			return "", ErrWrongPassword
		}
	}
	return s.mediaToken(m.Code, displayName)
}

func (s *Service) mediaToken(room domain.RoomID, displayName string) (string, error) {
	now := time.Now()
	claims := &MediaClaims{
		Room:        room,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign media token: %w", err)
	}
	return token, nil
}

// Lookup implements orch.Directory. Hits the cache first; a repo miss is
// cached too so hammering a bogus code doesn't hammer the database.
func (s *Service) Lookup(ctx context.Context, room domain.RoomID) (orch.RoomMetadata, error) {
	if meta, ok := s.cache.getMeta(ctx, room); ok {
		return orch.RoomMetadata{Exists: meta.Exists, RequiresPassword: meta.RequiresPassword}, nil
	}
	m, err := s.repo.GetByCode(ctx, room)
	if err != nil {
		return orch.RoomMetadata{}, err
	}
	meta := cachedMeta{Exists: m != nil, RequiresPassword: m != nil && m.RequiresPassword()}
	s.cache.setMeta(ctx, room, meta)
	return orch.RoomMetadata{Exists: meta.Exists, RequiresPassword: meta.RequiresPassword}, nil
}
