package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/singhastra/microfeedx/config"
	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/services"
	"github.com/singhastra/microfeedx/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles authentication endpoints including local
// email/password accounts and third-party OAuth providers.
type AuthController struct {
	users    services.UserStore
	profiles services.ProfileService
}

func NewAuthController(users services.UserStore, profiles services.ProfileService) *AuthController {
	return &AuthController{users: users, profiles: profiles}
}

// Register creates an email/password account together with its profile and
// issues a JWT.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid credentials")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if err := services.ValidateUsername(username); err != nil {
		serviceError(ctx, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, taken, err := a.users.GetUserByEmail(email); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check email")
		return
	} else if taken {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email is already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	user := models.User{Email: &email, PasswordHash: hash}
	if err := a.users.CreateUser(&user); err != nil {
		// The unique (email, provider) index is the authoritative guard;
		// a concurrent registration that slipped past the lookup lands here.
		if errors.Is(err, services.ErrDuplicate) {
			utils.Error(ctx, http.StatusBadRequest, 40002, "email is already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	profile, err := a.profiles.Create(user.ID, username, "")
	if err != nil {
		// Keep account creation atomic from the client's view: a rejected
		// username must not leave an orphaned auth account behind.
		_ = a.users.DeleteUser(user.ID)
		serviceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.ProfileCacheKey(profile.Username))

	token, err := utils.GenerateToken(user.ID, profile.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userResponse(user, &profile)})
}

// Login authenticates an email/password account.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid credentials")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, found, err := a.users.GetUserByEmail(email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load user")
		return
	}
	if !found || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	profile, username := a.lookupProfile(user.ID)
	token, err := utils.GenerateToken(user.ID, username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userResponse(user, profile)})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.SuccessMessage(ctx, "logged out")
}

// Me returns the current authenticated user plus profile. needs_username tells
// OAuth clients to route to username setup.
func (a *AuthController) Me(ctx *gin.Context) {
	id := viewerID(ctx)
	if id == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "authentication required")
		return
	}

	user, found, err := a.users.GetUser(id)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load user")
		return
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	profile, _ := a.lookupProfile(user.ID)
	utils.Success(ctx, userResponse(user, profile))
}

// SetupUsername finishes onboarding for OAuth accounts by creating the
// profile.
func (a *AuthController) SetupUsername(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		FullName string `json:"full_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	profile, err := a.profiles.Create(viewerID(ctx), req.Username, req.FullName)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.ProfileCacheKey(profile.Username))
	utils.Success(ctx, gin.H{"profile": profile})
}

// OAuthRedirect generates a provider-specific authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and
// issues a JWT. First-time OAuth users have no profile yet and must call
// SetupUsername before posting or liking.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	userInfo, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, userInfo)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	profile, username := a.lookupProfile(user.ID)
	jwtToken, err := utils.GenerateToken(user.ID, username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": jwtToken, "user": userResponse(*user, profile)})
}

// lookupProfile returns the user's profile when onboarding finished, nil
// otherwise.
func (a *AuthController) lookupProfile(userID string) (*models.Profile, string) {
	profile, err := a.profiles.Get(userID)
	if err != nil {
		return nil, ""
	}
	return &profile, profile.Username
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID    string
	Email string
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	user, found, err := a.users.GetUserByProvider(provider, data.ID)
	if err != nil {
		return nil, err
	}
	if found {
		if next := emailPtr(data.Email); next != nil && !emailEqual(user.Email, next) {
			if err := a.users.UpdateUserEmail(user.ID, next); err == nil {
				user.Email = next
			}
		}
		return &user, nil
	}

	user = models.User{
		Email:      emailPtr(data.Email),
		Provider:   provider,
		ProviderID: data.ID,
	}
	if err := a.users.CreateUser(&user); err != nil {
		// The address already belongs to another account from the same
		// provider; keep the new account without it.
		if errors.Is(err, services.ErrDuplicate) && user.Email != nil {
			user.Email = nil
			err = a.users.CreateUser(&user)
		}
		if err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func emailPtr(s string) *string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

func emailEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(token)
	case "google":
		return fetchGoogleUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	email, _ := fetchGitHubEmail(token.AccessToken)
	return &oauthUser{ID: fmt.Sprintf("%d", payload.ID), Email: email}, nil
}

func fetchGitHubEmail(accessToken string) (string, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &oauthUser{ID: payload.ID, Email: payload.Email}, nil
}

func userResponse(user models.User, profile *models.Profile) gin.H {
	return gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"provider":       user.Provider,
		"created_at":     user.CreatedAt,
		"profile":        profile,
		"needs_username": profile == nil,
	}
}
