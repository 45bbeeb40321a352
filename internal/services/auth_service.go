package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/juhum/We-Go-Jim/internal/models"
	"github.com/juhum/We-Go-Jim/pkg/utils"
)

// ErrPasswordMismatch fails registration before any external call is made.
var ErrPasswordMismatch = errors.New("passwords do not match")

type sessionStore interface {
	Create(ctx context.Context, userID, role string) (*models.Session, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService owns the registration and login flows. Handlers stay thin and
// map the returned error kinds to transport responses.
type AuthService struct {
	identity CredentialGateway
	storage  StorageService
	sessions sessionStore
}

func NewAuthService(identity CredentialGateway, storage StorageService, sessions sessionStore) *AuthService {
	return &AuthService{
		identity: identity,
		storage:  storage,
		sessions: sessions,
	}
}

type RegisterInput struct {
	Email     string
	Password1 string
	Password2 string
	IsTrainer bool
}

// Register creates the account at the identity provider and provisions the
// user's storage documents. The two steps are not transactional: when
// provisioning fails the account already exists, which is logged with the
// account id so the documents can be provisioned afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if input.Password1 != input.Password2 {
		return ErrPasswordMismatch
	}

	role := models.RoleStudent
	if input.IsTrainer {
		role = models.RoleTrainer
	}

	sub, err := s.identity.CreateAccount(ctx, input.Email, input.Password1, role)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	if err := s.storage.InitUser(ctx, sub, role); err != nil {
		log.Printf("account %s created but storage provisioning failed: %v", sub, err)
		return fmt.Errorf("provision user storage: %w", err)
	}

	return nil
}

// Login authenticates against the identity provider and establishes a
// session. A still-valid existing session short-circuits the flow without a
// provider round-trip. Every failure past that point reads the same to the
// caller; the distinguishing detail only goes to the log.
func (s *AuthService) Login(ctx context.Context, existingToken, email, password string) (*models.Session, error) {
	if existingToken != "" {
		if session, err := s.sessions.Get(ctx, existingToken); err == nil {
			return session, nil
		}
	}

	result, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("identity provider login failed: %v", err)
		}
		return nil, ErrInvalidCredentials
	}

	sub, err := utils.AccessTokenSubject(result.AccessToken)
	if err != nil {
		log.Printf("unusable access token from identity provider: %v", err)
		return nil, ErrInvalidCredentials
	}

	role, err := s.identity.LookupAttribute(ctx, email, "role")
	if err != nil {
		log.Printf("role lookup failed for %s: %v", sub, err)
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, sub, role)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Logout clears the server-side session. It never fails from the caller's
// point of view.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		log.Printf("failed to delete session: %v", err)
	}
}
