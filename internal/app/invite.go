package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// DefaultInviteTTL bounds how long a minted invite stays redeemable.
const DefaultInviteTTL = 15 * time.Minute

var (
	ErrInviteConfig  = errors.New("invite config is incomplete")
	ErrInviteInvalid = errors.New("invite token is invalid")
	ErrInviteExpired = errors.New("invite token has expired")
)

// Invite is the verified content of an invite token: which match to join,
// under which room code, and who sent it.
type Invite struct {
	MatchID   string `json:"match_id"`
	RoomCode  string `json:"room_code"`
	InviterID string `json:"inviter_id"`
}

// InviteService mints and verifies signed match-invite tokens so that a
// join link can travel through untrusted channels.
type InviteService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteService(secret, issuer string, ttl time.Duration) *InviteService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InviteService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint signs an invite for the given match on behalf of the inviter.
func (s *InviteService) Mint(inviterID, matchID, roomCode string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", ErrInviteConfig
	}
	if inviterID == "" {
		return "", fmt.Errorf("inviter id is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  inviterID,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"mid":  matchID,
		"room": roomCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, expiry and issuer of an invite token and
// returns its content. Expired tokens map to ErrInviteExpired so callers
// can tell "ask for a new link" apart from tampering.
func (s *InviteService) Verify(tokenString string) (Invite, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return Invite{}, ErrInviteConfig
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Invite{}, ErrInviteExpired
		}
		return Invite{}, fmt.Errorf("%w: %v", ErrInviteInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Invite{}, ErrInviteInvalid
	}

	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return Invite{}, fmt.Errorf("%w: issuer mismatch", ErrInviteInvalid)
	}
	matchID, _ := claims["mid"].(string)
	if matchID == "" {
		return Invite{}, fmt.Errorf("%w: missing match id", ErrInviteInvalid)
	}
	roomCode, _ := claims["room"].(string)
	inviterID, _ := claims["sub"].(string)

	return Invite{MatchID: matchID, RoomCode: roomCode, InviterID: inviterID}, nil
}
