package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storeit-dev/storeit/internal/auth"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/internal/database"
	"github.com/storeit-dev/storeit/pkg/mapper"
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultAvatar = "https://api.dicebear.com/9.x/initials/svg?seed="

// AuthService is the identity resolver: it issues sessions and answers who
// the acting user is.
type AuthService struct {
	db    *gorm.DB
	cache cache.Cacher
	cnf   *config.JWTConfig
}

func NewAuthService(db *gorm.DB, cacher cache.Cacher, cnf *config.JWTConfig) *AuthService {
	return &AuthService{db: db, cache: cacher, cnf: cnf}
}

func (as *AuthService) Register(ctx context.Context, in *schemas.Register) (*schemas.UserOut, *types.AppError) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Avatar:       defaultAvatar + in.Name,
		PasswordHash: string(hash),
	}

	if err := as.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsKeyConflictErr(err) {
			return nil, &types.AppError{Error: err, Code: http.StatusConflict}
		}
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	return mapper.ToUserOut(&user), nil
}

func (as *AuthService) LogIn(ctx context.Context, in *schemas.Login) (*schemas.AuthOut, *types.AppError) {
	var user models.User
	if err := as.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error; err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrInvalidCredentials, Code: http.StatusUnauthorized}
		}
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, &types.AppError{Error: ErrInvalidCredentials, Code: http.StatusUnauthorized}
	}

	checksum := md5.Sum([]byte(uuid.NewString()))
	sessionHash := hex.EncodeToString(checksum[:])

	if err := as.db.WithContext(ctx).Create(&models.Session{
		UserID: user.ID,
		Hash:   sessionHash,
	}).Error; err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	now := time.Now().UTC()
	claims := &types.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cnf.SessionTime)),
		},
		Email: user.Email,
		Name:  user.Name,
		Hash:  sessionHash,
	}

	token, err := auth.Encode(as.cnf.Secret, claims)
	if err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	return &schemas.AuthOut{User: *mapper.ToUserOut(&user), Token: token}, nil
}

// Session resolves the acting identity to a fresh user record.
func (as *AuthService) Session(ctx context.Context, actor *types.Actor) (*schemas.UserOut, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}

	var user models.User
	if err := as.db.WithContext(ctx).Where("id = ?", actor.ID).First(&user).Error; err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, unauthenticated()
		}
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	return mapper.ToUserOut(&user), nil
}

// Logout deletes the session row and drops it from the cache, revoking the
// token everywhere.
func (as *AuthService) Logout(ctx context.Context, sessionHash string) (*schemas.Message, *types.AppError) {
	if err := as.db.WithContext(ctx).Where("hash = ?", sessionHash).Delete(&models.Session{}).Error; err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}
	as.cache.Delete(cache.KeySession(sessionHash))
	return &schemas.Message{Message: "logged out"}, nil
}
