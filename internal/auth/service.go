package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"smartstock/internal/shared/token"
	"smartstock/internal/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user inactive")
	ErrInvalidRole        = errors.New("invalid role")
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*token.TokenPair, error)
	ValidateToken(ctx context.Context, tokenString string) (*UserResponse, error)
	CheckUsers(ctx context.Context) (*CheckUsersResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
	GetProfile(ctx context.Context, userID string) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	GetUser(ctx context.Context, userID string) (*UserResponse, error)
	UpdateUserRole(ctx context.Context, userID string, role string) (*UserResponse, error)
	DeactivateUser(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	tokens token.Service
}

func NewService(repo Repository, tokens token.Service) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	// Check if user already exists
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.repo.UsernameExists(ctx, req.Username)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role, err := s.registrationRole(ctx, req.Role)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      role,
		Active:    true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, err
	}

	return newAuthResponse(user, pair), nil
}

// registrationRole resolves the role a new account gets. The very first
// account becomes administrator regardless of the request, so a fresh
// deployment can bootstrap itself.
func (s *service) registrationRole(ctx context.Context, requested string) (users.Role, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return users.RoleAdministrator, nil
	}

	if requested == "" {
		return users.RoleSalesStaff, nil
	}
	if !users.IsValidRole(requested) {
		return "", ErrInvalidRole
	}
	return users.Role(requested), nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var (
		user *users.User
		err  error
	)
	switch {
	case req.Email != "":
		user, err = s.repo.GetUserByEmail(ctx, req.Email)
	case req.Username != "":
		user, err = s.repo.GetUserByUsername(ctx, req.Username)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, err
	}

	return newAuthResponse(user, pair), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*token.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// The refresh payload carries only the id; the full identity comes
	// from the store, which also catches deactivated accounts.
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	// The old refresh token is burned on use.
	if err := s.tokens.RevokeRefresh(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.tokens.Issue(identityOf(user))
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*UserResponse, error) {
	claims, err := s.tokens.VerifyAccess(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	// Tokens are not self-sufficient: the id must still resolve to an
	// active account.
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	resp := newUserResponse(user)
	return &resp, nil
}

func (s *service) CheckUsers(ctx context.Context) (*CheckUsersResponse, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &CheckUsersResponse{
		UserCount:   count,
		IsFirstUser: count == 0,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.tokens.RevokeAccess(ctx, accessToken); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.tokens.RevokeRefresh(ctx, refreshToken); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	// Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdateUserPassword(ctx, userID, string(hashedPassword))
}

func (s *service) GetProfile(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := newUserResponse(user)
	return &resp, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	list, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	resps := make([]UserResponse, 0, len(list))
	for i := range list {
		resps = append(resps, newUserResponse(&list[i]))
	}
	return resps, nil
}

func (s *service) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	return s.GetProfile(ctx, userID)
}

func (s *service) UpdateUserRole(ctx context.Context, userID string, role string) (*UserResponse, error) {
	if !users.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	if err := s.repo.UpdateUserRole(ctx, userID, users.Role(role)); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

func (s *service) DeactivateUser(ctx context.Context, userID string) error {
	return s.repo.DeactivateUser(ctx, userID)
}

func identityOf(user *users.User) token.Identity {
	return token.Identity{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}
