package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/models"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/repository"
	"github.com/ignatzorin/hebammen-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
}

// ProfileStore описывает часть репозитория профилей, нужную при регистрации и входе.
type ProfileStore interface {
	Create(ctx context.Context, profile *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

// AuthService инкапсулирует регистрацию и аутентификацию.
type AuthService struct {
	repo          AuthRepository
	profiles      ProfileStore
	tokenManager  *TokenManager
	calendarToken func() (string, error)
}

type RegisterInput struct {
	Email       string
	Password    string
	Role        string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или входа.
type AuthResult struct {
	User      *models.User
	Profile   *entity.Profile
	TokenPair *TokenPair
}

// SessionMeta содержит данные клиента, сохраняемые вместе с сессией.
type SessionMeta struct {
	UserAgent string
	IP        string
}

func NewAuthService(repo AuthRepository, profiles ProfileStore, tokenManager *TokenManager, calendarToken func() (string, error)) *AuthService {
	return &AuthService{
		repo:          repo,
		profiles:      profiles,
		tokenManager:  tokenManager,
		calendarToken: calendarToken,
	}
}

// Register создаёт пользователя и его профиль. Через API можно зарегистрироваться
// только клиентом или акушеркой; администраторы назначаются в базе.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	role, err := valueobject.NewRole(in.Role)
	if err != nil || role == valueobject.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeValidation, "роль должна быть CLIENT или MIDWIFE")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		Role:         string(role),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.Wrap(err, apperror.ErrCodeConflict, "email уже зарегистрирован")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать пользователя")
	}

	profile := entity.NewProfile(user.ID, role, in.DisplayName)
	if role == valueobject.RoleMidwife {
		token, err := s.calendarToken()
		if err != nil {
			s.rollbackUser(ctx, user.ID)
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать токен календаря")
		}
		profile.CalendarToken = &token
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.rollbackUser(ctx, user.ID)
		return nil, err
	}

	pair, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: pair}, nil
}

// Login проверяет учётные данные и выпускает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	pair, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, user.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: профиль пользователя не загружен")
		profile = nil
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: pair}, nil
}

// Refresh меняет refresh-токен на новую пару. Каждый refresh-токен одноразовый.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	if err := s.repo.DeleteSession(ctx, oldToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить сессию")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	return s.startSession(ctx, user, meta)
}

func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сессии")
	}
	return sessions, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.DeleteSessionByID(ctx, sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "сессия не найдена")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить сессию")
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, meta SessionMeta) (*TokenPair, error) {
	pair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		session.IPAddress = &meta.IP
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сессию")
	}
	return pair, nil
}

func (s *AuthService) rollbackUser(ctx context.Context, userID uuid.UUID) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("auth service: не удалось откатить регистрацию")
	}
}
